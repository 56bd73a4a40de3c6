package repo

import (
	"context"

	"github.com/nystar1/midnight/internal/modules/model"
	"gorm.io/gorm"
)

type SyncFailureRepo interface {
	Record(ctx context.Context, f *model.SyncFailure) error
	ListUnresolved(ctx context.Context, limit int) ([]model.SyncFailure, error)
}

type syncFailureRepo struct{ db *gorm.DB }

func NewSyncFailureRepo(db *gorm.DB) SyncFailureRepo {
	return &syncFailureRepo{db: db}
}

func (r *syncFailureRepo) Record(ctx context.Context, f *model.SyncFailure) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *syncFailureRepo) ListUnresolved(ctx context.Context, limit int) ([]model.SyncFailure, error) {
	var items []model.SyncFailure
	q := r.db.WithContext(ctx).Where("resolved = false").Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return items, q.Find(&items).Error
}
