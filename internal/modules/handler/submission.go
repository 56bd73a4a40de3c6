package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nystar1/midnight/internal/middleware"
	"github.com/nystar1/midnight/internal/modules/serializer"
	"github.com/nystar1/midnight/internal/modules/service"
)

type SubmissionHandler struct {
	svc service.ReviewService
}

func NewSubmissionHandler(s service.ReviewService) *SubmissionHandler {
	return &SubmissionHandler{svc: s}
}

type UpdateSubmissionReq struct {
	ApprovalStatus     *string  `json:"approval_status" binding:"omitempty,oneof=pending approved rejected"`
	ApprovedHours      *float64 `json:"approved_hours" binding:"omitempty,min=0"`
	HoursJustification *string  `json:"hours_justification"`
	Feedback           *string  `json:"feedback"`
	// Only a literal true sends notifications; omitting the field never does.
	SendNotification bool `json:"send_notification"`
}

func (h *SubmissionHandler) UpdateSubmission(c *gin.Context) {
	submissionID, ok := idParam(c, "id")
	if !ok {
		return
	}

	req := UpdateSubmissionReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.ReviewSubmission(c.Request.Context(), service.ReviewSubmissionInput{
		SubmissionID: submissionID,
		ReviewerID:   middleware.AdminID(c),
		Patch: service.SubmissionPatch{
			ApprovalStatus:     req.ApprovalStatus,
			ApprovedHours:      req.ApprovedHours,
			HoursJustification: req.HoursJustification,
			Feedback:           req.Feedback,
			SendNotification:   req.SendNotification,
		},
	})
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

type QuickApproveReq struct {
	Hours         *float64 `json:"hours" binding:"omitempty,min=0"`
	Justification *string  `json:"justification"`
	Feedback      *string  `json:"feedback"`
}

func (h *SubmissionHandler) QuickApprove(c *gin.Context) {
	submissionID, ok := idParam(c, "id")
	if !ok {
		return
	}

	// The request body is optional on the fast path.
	req := QuickApproveReq{}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.QuickApprove(c.Request.Context(), service.QuickApproveInput{
		SubmissionID:  submissionID,
		ReviewerID:    middleware.AdminID(c),
		Hours:         req.Hours,
		Justification: req.Justification,
		Feedback:      req.Feedback,
	})
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}
