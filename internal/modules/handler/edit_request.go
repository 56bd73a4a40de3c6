package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nystar1/midnight/internal/middleware"
	"github.com/nystar1/midnight/internal/modules/serializer"
	"github.com/nystar1/midnight/internal/modules/service"
)

type EditRequestHandler struct {
	svc service.EditRequestService
}

func NewEditRequestHandler(s service.EditRequestService) *EditRequestHandler {
	return &EditRequestHandler{svc: s}
}

func (h *EditRequestHandler) Approve(c *gin.Context) {
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	request, err := h.svc.Approve(c.Request.Context(), requestID, middleware.AdminID(c))
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: request})
}

type RejectEditRequestReq struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *EditRequestHandler) Reject(c *gin.Context) {
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	req := RejectEditRequestReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	request, err := h.svc.Reject(c.Request.Context(), requestID, middleware.AdminID(c), req.Reason)
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: request})
}
