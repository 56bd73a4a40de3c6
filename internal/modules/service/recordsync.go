package service

import (
	"context"

	"github.com/nystar1/midnight/internal/infra/httpclient"
	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/nystar1/midnight/internal/modules/repo"
	"github.com/nystar1/midnight/internal/telemetry"
	"go.uber.org/zap"
)

// RecordStore is the slice of the Airtable client the sync service needs.
type RecordStore interface {
	CreateApprovedProject(ctx context.Context, payload httpclient.ApprovedProjectPayload) (string, error)
	UpdateApprovedProject(ctx context.Context, recordID string, fields map[string]any) error
}

// RecordSyncService mirrors approved projects into the external record store.
// The stored record id on the project decides create versus update, so the
// same project never produces a duplicate row.
type RecordSyncService interface {
	// SyncApprovedProject pushes the current approved state out. The returned
	// error is reporting detail for the caller's sync report; the caller's own
	// write has already committed and must not be rolled back on it.
	SyncApprovedProject(ctx context.Context, project *model.Project, submission *model.Submission) (string, error)
	// RecentFailures lists the newest unresolved journal entries for operators
	// deciding what to backfill.
	RecentFailures(ctx context.Context, limit int) ([]model.SyncFailure, error)
}

type recordSyncService struct {
	projects repo.ProjectRepo
	users    repo.UserRepo
	failures repo.SyncFailureRepo
	store    RecordStore
	log      *zap.Logger
}

func NewRecordSyncService(projects repo.ProjectRepo, users repo.UserRepo, failures repo.SyncFailureRepo, store RecordStore, log *zap.Logger) RecordSyncService {
	return &recordSyncService{
		projects: projects,
		users:    users,
		failures: failures,
		store:    store,
		log:      log,
	}
}

func (s *recordSyncService) SyncApprovedProject(ctx context.Context, project *model.Project, submission *model.Submission) (string, error) {
	if project.AirtableRecID == nil || *project.AirtableRecID == "" {
		return s.create(ctx, project, submission)
	}
	return s.update(ctx, project, submission)
}

func (s *recordSyncService) RecentFailures(ctx context.Context, limit int) ([]model.SyncFailure, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	failures, err := s.failures.ListUnresolved(ctx, limit)
	if err != nil {
		return nil, dbErr(err)
	}
	return failures, nil
}

func (s *recordSyncService) create(ctx context.Context, project *model.Project, submission *model.Submission) (string, error) {
	payload := buildApprovedPayload(project, submission)

	recordID, err := s.store.CreateApprovedProject(ctx, payload)
	if err != nil {
		s.journal(ctx, model.SyncKindAirtableCreate, project, submission, err)
		return "", err
	}

	if err := s.projects.UpdateFields(ctx, project.ProjectID, map[string]any{
		"airtable_rec_id": recordID,
	}); err != nil {
		s.journal(ctx, model.SyncKindAirtableCreate, project, submission, err)
		return recordID, err
	}
	project.AirtableRecID = &recordID

	// The participant row is shared across all of the user's projects; only
	// claim it when the user has none yet.
	if project.User != nil && project.User.AirtableRecID == nil {
		if err := s.users.UpdateFields(ctx, project.UserID, map[string]any{
			"airtable_rec_id": recordID,
		}); err != nil {
			s.journal(ctx, model.SyncKindAirtableCreate, project, submission, err)
			return recordID, err
		}
		project.User.AirtableRecID = &recordID
	}

	return recordID, nil
}

func (s *recordSyncService) update(ctx context.Context, project *model.Project, submission *model.Submission) (string, error) {
	recordID := *project.AirtableRecID
	payload := buildApprovedPayload(project, submission)

	fields := map[string]any{
		"Project Title": payload.ProjectTitle,
		"Description":   payload.Description,
		"Playable URL":  payload.PlayableURL,
		"Code URL":      payload.RepoURL,
		"Screenshot":    payload.ScreenshotURL,
	}
	if payload.ApprovedHours != nil {
		fields["Approved Hours"] = *payload.ApprovedHours
	}
	if payload.HoursJustification != nil {
		fields["Hours Justification"] = *payload.HoursJustification
	}

	if err := s.store.UpdateApprovedProject(ctx, recordID, fields); err != nil {
		s.journal(ctx, model.SyncKindAirtableUpdate, project, submission, err)
		return recordID, err
	}
	return recordID, nil
}

// buildApprovedPayload merges user profile fields with project and submission
// artifact fields. Submission values win over the project's stale copies, the
// project's win over empty.
func buildApprovedPayload(project *model.Project, submission *model.Submission) httpclient.ApprovedProjectPayload {
	payload := httpclient.ApprovedProjectPayload{
		ProjectTitle:       project.ProjectTitle,
		Description:        firstNonEmpty(submission.Description, project.Description),
		PlayableURL:        firstNonEmpty(submission.PlayableURL, project.PlayableURL),
		RepoURL:            firstNonEmpty(submission.RepoURL, project.RepoURL),
		ScreenshotURL:      firstNonEmpty(submission.ScreenshotURL, project.ScreenshotURL),
		ApprovedHours:      submission.ApprovedHours,
		HoursJustification: submission.HoursJustification,
	}
	if payload.ApprovedHours == nil {
		payload.ApprovedHours = project.ApprovedHours
	}
	if payload.HoursJustification == nil {
		payload.HoursJustification = project.HoursJustification
	}

	if user := project.User; user != nil {
		payload.FirstName = user.FirstName
		payload.LastName = user.LastName
		payload.Email = user.Email
		payload.Birthday = user.Birthday.UTC().Format("2006-01-02")
		payload.AddressLine1 = user.AddressLine1
		payload.AddressLine2 = user.AddressLine2
		payload.City = user.City
		payload.State = user.State
		payload.Country = user.Country
		payload.ZipCode = user.ZipCode
	}
	return payload
}

func (s *recordSyncService) journal(ctx context.Context, kind string, project *model.Project, submission *model.Submission, cause error) {
	s.log.Error("airtable sync failed",
		zap.String("kind", kind),
		zap.Int64("project_id", project.ProjectID),
		zap.Error(cause))
	telemetry.RecordSyncFailure(ctx, kind)

	failure := &model.SyncFailure{
		Kind:      kind,
		ProjectID: &project.ProjectID,
		ErrorMsg:  cause.Error(),
	}
	if submission != nil {
		failure.SubmissionID = &submission.SubmissionID
	}
	if err := s.failures.Record(ctx, failure); err != nil {
		s.log.Error("failed to journal sync failure", zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
