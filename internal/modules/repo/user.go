package repo

import (
	"context"

	"github.com/nystar1/midnight/internal/modules/model"
	"gorm.io/gorm"
)

type UserRepo interface {
	Get(ctx context.Context, userID int64) (*model.User, error)
	// GetByIDs batch-loads users for reviewer name resolution; ids with no
	// matching row are simply absent from the result.
	GetByIDs(ctx context.Context, userIDs []int64) (map[int64]model.User, error)
	UpdateFields(ctx context.Context, userID int64, fields map[string]any) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) Get(ctx context.Context, userID int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, userIDs []int64) (map[int64]model.User, error) {
	out := make(map[int64]model.User, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.UserID] = u
	}
	return out, nil
}

func (r *userRepo) UpdateFields(ctx context.Context, userID int64, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(fields).Error
}
