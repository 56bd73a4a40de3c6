package repo

import (
	"context"

	"github.com/nystar1/midnight/internal/modules/model"
	"gorm.io/gorm"
)

type ProjectRepo interface {
	GetWithUser(ctx context.Context, projectID int64) (*model.Project, error)
	// ListWithUsers returns every project with its owner preloaded. Used by
	// the batch reconciliation pass.
	ListWithUsers(ctx context.Context) ([]model.Project, error)
	UpdateFields(ctx context.Context, projectID int64, fields map[string]any) error
	Delete(ctx context.Context, projectID int64) error
	Totals(ctx context.Context) (*ProgramTotals, error)
}

// ProgramTotals aggregates program-wide hour and participation counts.
type ProgramTotals struct {
	TotalHackatimeHours          float64 `json:"total_hackatime_hours"`
	TotalApprovedHours           float64 `json:"total_approved_hours"`
	TotalUsers                   int64   `json:"total_users"`
	TotalProjects                int64   `json:"total_projects"`
	TotalSubmittedHackatimeHours float64 `json:"total_submitted_hackatime_hours"`
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) GetWithUser(ctx context.Context, projectID int64) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&p, "project_id = ?", projectID).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) ListWithUsers(ctx context.Context) ([]model.Project, error) {
	var items []model.Project
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("project_id ASC").
		Find(&items).Error
	return items, err
}

func (r *projectRepo) UpdateFields(ctx context.Context, projectID int64, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("project_id = ?", projectID).
		Updates(fields).Error
}

func (r *projectRepo) Delete(ctx context.Context, projectID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Project{}, "project_id = ?", projectID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *projectRepo) Totals(ctx context.Context) (*ProgramTotals, error) {
	totals := &ProgramTotals{}

	err := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Select("COALESCE(SUM(now_hackatime_hours), 0)").
		Scan(&totals.TotalHackatimeHours).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&model.Project{}).
		Select("COALESCE(SUM(approved_hours), 0)").
		Scan(&totals.TotalApprovedHours).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&model.User{}).
		Count(&totals.TotalUsers).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&model.Project{}).
		Count(&totals.TotalProjects).Error
	if err != nil {
		return nil, err
	}

	// Hours on projects that have at least one submission.
	err = r.db.WithContext(ctx).
		Model(&model.Project{}).
		Select("COALESCE(SUM(now_hackatime_hours), 0)").
		Where("EXISTS (SELECT 1 FROM submissions WHERE submissions.project_id = projects.project_id)").
		Scan(&totals.TotalSubmittedHackatimeHours).Error
	if err != nil {
		return nil, err
	}

	return totals, nil
}
