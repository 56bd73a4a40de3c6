package repo

import (
	"context"

	"github.com/nystar1/midnight/internal/modules/model"
	"gorm.io/gorm"
)

type EditRequestRepo interface {
	Get(ctx context.Context, requestID int64) (*model.EditRequest, error)
	// ListPendingProjectUpdates returns the pending project_update requests
	// for a project, the population the review cascade resolves.
	ListPendingProjectUpdates(ctx context.Context, projectID int64) ([]model.EditRequest, error)
	UpdateFields(ctx context.Context, requestID int64, fields map[string]any) error
}

type editRequestRepo struct{ db *gorm.DB }

func NewEditRequestRepo(db *gorm.DB) EditRequestRepo {
	return &editRequestRepo{db: db}
}

func (r *editRequestRepo) Get(ctx context.Context, requestID int64) (*model.EditRequest, error) {
	var er model.EditRequest
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Project.User").
		First(&er, "request_id = ?", requestID).Error
	if err != nil {
		return nil, err
	}
	return &er, nil
}

func (r *editRequestRepo) ListPendingProjectUpdates(ctx context.Context, projectID int64) ([]model.EditRequest, error) {
	var items []model.EditRequest
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ? AND request_type = ?",
			projectID, model.StatusPending, model.RequestTypeProjectUpdate).
		Order("request_id ASC").
		Find(&items).Error
	return items, err
}

func (r *editRequestRepo) UpdateFields(ctx context.Context, requestID int64, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&model.EditRequest{}).
		Where("request_id = ?", requestID).
		Updates(fields).Error
}
