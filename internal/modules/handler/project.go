package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nystar1/midnight/internal/modules/serializer"
	"github.com/nystar1/midnight/internal/modules/service"
)

type ProjectHandler struct {
	hours    service.HoursService
	projects service.ProjectService
}

func NewProjectHandler(hours service.HoursService, projects service.ProjectService) *ProjectHandler {
	return &ProjectHandler{hours: hours, projects: projects}
}

func (h *ProjectHandler) Recalculate(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	project, err := h.hours.Recalculate(c.Request.Context(), projectID)
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

func (h *ProjectHandler) RecalculateAll(c *gin.Context) {
	out, err := h.hours.RecalculateAll(c.Request.Context())
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

type SetFraudFlagReq struct {
	Fraud *bool `json:"fraud" binding:"required"`
}

func (h *ProjectHandler) SetFraudFlag(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	req := SetFraudFlagReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	project, err := h.projects.SetFraudFlag(c.Request.Context(), projectID, *req.Fraud)
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

func (h *ProjectHandler) Unlock(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.Unlock(c.Request.Context(), projectID)
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), projectID); err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}
