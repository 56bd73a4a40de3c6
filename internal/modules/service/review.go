package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nystar1/midnight/internal/infra/httpclient"
	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/nystar1/midnight/internal/modules/repo"
	"github.com/nystar1/midnight/internal/telemetry"
	"go.uber.org/zap"
)

// ReviewService owns the submission state transition. It is the only writer
// of approval_status, and every downstream effect (record sync, edit-request
// cascade, notification) is wrapped so its failure never rolls the
// transition back.
type ReviewService interface {
	ReviewSubmission(ctx context.Context, in ReviewSubmissionInput) (*ReviewOutput, error)
	QuickApprove(ctx context.Context, in QuickApproveInput) (*ReviewOutput, error)
}

type reviewService struct {
	submissions repo.SubmissionRepo
	projects    repo.ProjectRepo
	sync        RecordSyncService
	cascade     EditRequestService
	notify      NotifyService
	log         *zap.Logger
}

func NewReviewService(submissions repo.SubmissionRepo, projects repo.ProjectRepo, sync RecordSyncService, cascade EditRequestService, notify NotifyService, log *zap.Logger) ReviewService {
	return &reviewService{
		submissions: submissions,
		projects:    projects,
		sync:        sync,
		cascade:     cascade,
		notify:      notify,
		log:         log,
	}
}

// SubmissionPatch carries the optional review fields. A nil pointer means
// the field is left untouched. SendNotification is deliberately a plain bool:
// only a literal true triggers notification, absence suppresses it.
type SubmissionPatch struct {
	ApprovalStatus     *string  `json:"approval_status"`
	ApprovedHours      *float64 `json:"approved_hours"`
	HoursJustification *string  `json:"hours_justification"`
	// Participant-facing feedback, forwarded to notifications only.
	Feedback         *string `json:"feedback"`
	SendNotification bool    `json:"send_notification"`
}

type ReviewSubmissionInput struct {
	SubmissionID int64
	ReviewerID   int64
	Patch        SubmissionPatch
}

type QuickApproveInput struct {
	SubmissionID  int64
	ReviewerID    int64
	Hours         *float64
	Justification *string
	Feedback      *string
}

// SyncReport tells the caller whether the committed review also reached the
// external record store. A failed sync never fails the review itself.
type SyncReport struct {
	Attempted bool   `json:"attempted"`
	FullSync  bool   `json:"full_sync"`
	RecordID  string `json:"record_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type ReviewOutput struct {
	Submission *model.Submission `json:"submission"`
	Sync       SyncReport        `json:"sync"`
}

func (s *reviewService) ReviewSubmission(ctx context.Context, in ReviewSubmissionInput) (*ReviewOutput, error) {
	if in.Patch.ApprovalStatus != nil && !validStatus(*in.Patch.ApprovalStatus) {
		return nil, ErrInvalidRequest
	}
	return s.apply(ctx, in.SubmissionID, in.ReviewerID, in.Patch)
}

func (s *reviewService) QuickApprove(ctx context.Context, in QuickApproveInput) (*ReviewOutput, error) {
	submission, err := s.submissions.GetWithProject(ctx, in.SubmissionID)
	if err != nil {
		return nil, dbErr(err)
	}

	// Hours precedence: explicit override, else the last reconciled
	// Hackatime total, else zero.
	hours := 0.0
	if in.Hours != nil {
		hours = *in.Hours
	} else if submission.Project != nil {
		hours = submission.Project.NowHackatimeHours
	}

	justification := fmt.Sprintf("Quick approved with %s hours.", strconv.FormatFloat(hours, 'f', -1, 64))
	if in.Justification != nil && *in.Justification != "" {
		justification = *in.Justification
	}

	status := model.StatusApproved
	return s.apply(ctx, in.SubmissionID, in.ReviewerID, SubmissionPatch{
		ApprovalStatus:     &status,
		ApprovedHours:      &hours,
		HoursJustification: &justification,
		Feedback:           in.Feedback,
		SendNotification:   true,
	})
}

func (s *reviewService) apply(ctx context.Context, submissionID, reviewerID int64, patch SubmissionPatch) (*ReviewOutput, error) {
	start := time.Now()

	submission, err := s.submissions.GetWithProject(ctx, submissionID)
	if err != nil {
		return nil, dbErr(err)
	}
	project := submission.Project

	fields := map[string]any{}
	now := time.Now()
	reviewedBy := strconv.FormatInt(reviewerID, 10)

	if patch.ApprovalStatus != nil {
		// Reviewer stamp and timestamp always travel with a status change.
		fields["approval_status"] = *patch.ApprovalStatus
		fields["reviewed_by"] = reviewedBy
		fields["reviewed_at"] = now
	}
	if patch.ApprovedHours != nil {
		fields["approved_hours"] = *patch.ApprovedHours
	}
	if patch.HoursJustification != nil {
		fields["hours_justification"] = *patch.HoursJustification
	}

	if len(fields) > 0 {
		if err := s.submissions.UpdateFields(ctx, submissionID, fields); err != nil {
			return nil, err
		}
	}

	if patch.ApprovalStatus != nil {
		submission.ApprovalStatus = *patch.ApprovalStatus
		submission.ReviewedBy = &reviewedBy
		submission.ReviewedAt = &now
	}
	if patch.ApprovedHours != nil {
		submission.ApprovedHours = patch.ApprovedHours
	}
	if patch.HoursJustification != nil {
		submission.HoursJustification = patch.HoursJustification
	}

	// Mirror the review verdict onto the owning project. The project always
	// reflects the most recently approved submission's content.
	approved := patch.ApprovalStatus != nil && *patch.ApprovalStatus == model.StatusApproved
	projectFields := map[string]any{}
	if patch.ApprovedHours != nil {
		projectFields["approved_hours"] = *patch.ApprovedHours
	}
	if patch.HoursJustification != nil {
		projectFields["hours_justification"] = *patch.HoursJustification
	}
	if approved {
		if submission.Description != "" {
			projectFields["description"] = submission.Description
		}
		if submission.PlayableURL != "" {
			projectFields["playable_url"] = submission.PlayableURL
		}
		if submission.RepoURL != "" {
			projectFields["repo_url"] = submission.RepoURL
		}
		if submission.ScreenshotURL != "" {
			projectFields["screenshot_url"] = submission.ScreenshotURL
		}
	}
	if project != nil && len(projectFields) > 0 {
		if err := s.projects.UpdateFields(ctx, project.ProjectID, projectFields); err != nil {
			return nil, err
		}
		if patch.ApprovedHours != nil {
			project.ApprovedHours = patch.ApprovedHours
		}
		if patch.HoursJustification != nil {
			project.HoursJustification = patch.HoursJustification
		}
	}

	report := SyncReport{}
	if approved && project != nil {
		report.Attempted = true
		recordID, syncErr := s.sync.SyncApprovedProject(ctx, project, submission)
		report.RecordID = recordID
		if syncErr != nil {
			report.Error = syncErr.Error()
		} else {
			report.FullSync = true
		}
	}

	if patch.ApprovalStatus != nil && model.TerminalStatus(*patch.ApprovalStatus) {
		s.cascade.Cascade(ctx, submission.ProjectID, *patch.ApprovalStatus, reviewerID)
	}

	if patch.SendNotification && patch.ApprovalStatus != nil && project != nil {
		s.notify.Notify(ctx, project.User, httpclient.ReviewNotification{
			ProjectTitle:  project.ProjectTitle,
			ProjectID:     project.ProjectID,
			Approved:      approved,
			ApprovedHours: submission.ApprovedHours,
			Feedback:      patch.Feedback,
		})
	}

	if patch.ApprovalStatus != nil {
		telemetry.RecordReviewDecision(ctx, *patch.ApprovalStatus, float64(time.Since(start).Milliseconds()))
	}
	return &ReviewOutput{Submission: submission, Sync: report}, nil
}

func validStatus(status string) bool {
	switch status {
	case model.StatusPending, model.StatusApproved, model.StatusRejected:
		return true
	}
	return false
}
