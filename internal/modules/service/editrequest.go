package service

import (
	"context"
	"time"

	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/nystar1/midnight/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// autoRejectReason is stamped on edit requests cascaded by a rejection.
const autoRejectReason = "Auto-rejected: Submission was rejected"

// EditRequestService resolves participant edit requests, either directly by
// an admin or cascaded from a submission verdict.
type EditRequestService interface {
	// Approve applies the requested patch to the project and marks the
	// request approved. Conflict when the request is already terminal.
	Approve(ctx context.Context, requestID, reviewerID int64) (*model.EditRequest, error)
	// Reject marks the request rejected with a required reason.
	Reject(ctx context.Context, requestID, reviewerID int64, reason string) (*model.EditRequest, error)
	// Cascade resolves every pending project_update request for the project
	// with the submission's outcome. Best-effort: the verdict has already
	// committed, so per-request failures are logged and skipped.
	Cascade(ctx context.Context, projectID int64, outcome string, reviewerID int64)
}

type editRequestService struct {
	requests repo.EditRequestRepo
	projects repo.ProjectRepo
	hours    HoursService
	log      *zap.Logger
}

func NewEditRequestService(requests repo.EditRequestRepo, projects repo.ProjectRepo, hours HoursService, log *zap.Logger) EditRequestService {
	return &editRequestService{
		requests: requests,
		projects: projects,
		hours:    hours,
		log:      log,
	}
}

func (s *editRequestService) Approve(ctx context.Context, requestID, reviewerID int64) (*model.EditRequest, error) {
	request, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, dbErr(err)
	}
	if model.TerminalStatus(request.Status) {
		return nil, ErrConflict
	}

	patch := request.RequestedData
	fields := map[string]any{}
	if patch.ProjectTitle != nil {
		fields["project_title"] = *patch.ProjectTitle
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.PlayableURL != nil {
		fields["playable_url"] = *patch.PlayableURL
	}
	if patch.RepoURL != nil {
		fields["repo_url"] = *patch.RepoURL
	}
	if patch.ScreenshotURL != nil {
		fields["screenshot_url"] = *patch.ScreenshotURL
	}
	if patch.AirtableRecID != nil {
		fields["airtable_rec_id"] = *patch.AirtableRecID
	}
	if patch.NowHackatimeProjects != nil {
		fields["now_hackatime_projects"] = datatypes.NewJSONSlice(*patch.NowHackatimeProjects)
	}

	if len(fields) > 0 {
		if err := s.projects.UpdateFields(ctx, request.ProjectID, fields); err != nil {
			return nil, err
		}
	}

	// A changed set of claimed Hackatime projects invalidates the last
	// reconciled hours. Recalculation is best-effort here.
	if patch.NowHackatimeProjects != nil {
		if _, err := s.hours.Recalculate(ctx, request.ProjectID); err != nil {
			s.log.Warn("hours recalculation after edit approval failed",
				zap.Int64("project_id", request.ProjectID),
				zap.Error(err))
		}
	}

	now := time.Now()
	if err := s.requests.UpdateFields(ctx, requestID, map[string]any{
		"status":      model.StatusApproved,
		"reviewed_by": reviewerID,
		"reviewed_at": now,
	}); err != nil {
		return nil, err
	}

	request.Status = model.StatusApproved
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &now
	return request, nil
}

func (s *editRequestService) Reject(ctx context.Context, requestID, reviewerID int64, reason string) (*model.EditRequest, error) {
	if reason == "" {
		return nil, ErrInvalidRequest
	}

	request, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, dbErr(err)
	}
	if model.TerminalStatus(request.Status) {
		return nil, ErrConflict
	}

	now := time.Now()
	if err := s.requests.UpdateFields(ctx, requestID, map[string]any{
		"status":      model.StatusRejected,
		"reviewed_by": reviewerID,
		"reviewed_at": now,
		"reason":      reason,
	}); err != nil {
		return nil, err
	}

	request.Status = model.StatusRejected
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &now
	request.Reason = &reason
	return request, nil
}

func (s *editRequestService) Cascade(ctx context.Context, projectID int64, outcome string, reviewerID int64) {
	pending, err := s.requests.ListPendingProjectUpdates(ctx, projectID)
	if err != nil {
		s.log.Error("failed to list pending edit requests for cascade",
			zap.Int64("project_id", projectID),
			zap.Error(err))
		return
	}

	now := time.Now()
	for _, request := range pending {
		fields := map[string]any{
			"status":      outcome,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		}
		if outcome == model.StatusRejected {
			fields["reason"] = autoRejectReason
		}
		if err := s.requests.UpdateFields(ctx, request.RequestID, fields); err != nil {
			s.log.Error("edit request cascade update failed",
				zap.Int64("request_id", request.RequestID),
				zap.Int64("project_id", projectID),
				zap.Error(err))
		}
	}
}
