package repo

import (
	"context"

	"github.com/nystar1/midnight/internal/modules/model"
	"gorm.io/gorm"
)

type SubmissionRepo interface {
	// GetWithProject loads a submission with its project and the project's user.
	GetWithProject(ctx context.Context, submissionID int64) (*model.Submission, error)
	// UpdateFields applies a field-level update; concurrent writers touching
	// other columns are unaffected.
	UpdateFields(ctx context.Context, submissionID int64, fields map[string]any) error
	// ListTerminalReviewed returns submissions carrying a final verdict and a
	// reviewer stamp, the input of the reviewer leaderboard.
	ListTerminalReviewed(ctx context.Context) ([]model.Submission, error)
	// CountForProject reports how many submissions a project has received.
	CountForProject(ctx context.Context, projectID int64) (int64, error)
}

type submissionRepo struct{ db *gorm.DB }

func NewSubmissionRepo(db *gorm.DB) SubmissionRepo {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) GetWithProject(ctx context.Context, submissionID int64) (*model.Submission, error) {
	var s model.Submission
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Project.User").
		First(&s, "submission_id = ?", submissionID).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) UpdateFields(ctx context.Context, submissionID int64, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("submission_id = ?", submissionID).
		Updates(fields).Error
}

func (r *submissionRepo) ListTerminalReviewed(ctx context.Context) ([]model.Submission, error) {
	var items []model.Submission
	err := r.db.WithContext(ctx).
		Where("reviewed_by IS NOT NULL AND approval_status IN ?", []string{model.StatusApproved, model.StatusRejected}).
		Order("reviewed_at ASC").
		Find(&items).Error
	return items, err
}

func (r *submissionRepo) CountForProject(ctx context.Context, projectID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("project_id = ?", projectID).
		Count(&n).Error
	return n, err
}
