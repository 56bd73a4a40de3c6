package service

import (
	"context"
	"testing"

	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/nystar1/midnight/internal/modules/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestProjectService_SetFraudFlag(t *testing.T) {
	ctx := context.Background()

	projects := &MockProjectRepo{}
	projects.On("GetWithUser", mock.Anything, int64(10)).Return(&model.Project{ProjectID: 10}, nil)
	projects.On("UpdateFields", mock.Anything, int64(10), map[string]any{"is_fraud": true}).Return(nil)

	svc := NewProjectService(projects, &MockSubmissionRepo{}, testRedis(t), cacheConfig(), zap.NewNop())
	out, err := svc.SetFraudFlag(ctx, 10, true)
	require.NoError(t, err)
	assert.True(t, out.IsFraud)
	projects.AssertExpectations(t)
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("missing project maps to not found", func(t *testing.T) {
		projects := &MockProjectRepo{}
		submissions := &MockSubmissionRepo{}
		submissions.On("CountForProject", mock.Anything, int64(99)).Return(int64(0), nil)
		projects.On("Delete", mock.Anything, int64(99)).Return(gorm.ErrRecordNotFound)

		svc := NewProjectService(projects, submissions, testRedis(t), cacheConfig(), zap.NewNop())
		err := svc.Delete(ctx, 99)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("counts cascaded submissions before deleting", func(t *testing.T) {
		projects := &MockProjectRepo{}
		submissions := &MockSubmissionRepo{}
		submissions.On("CountForProject", mock.Anything, int64(10)).Return(int64(3), nil)
		projects.On("Delete", mock.Anything, int64(10)).Return(nil)

		svc := NewProjectService(projects, submissions, testRedis(t), cacheConfig(), zap.NewNop())
		require.NoError(t, svc.Delete(ctx, 10))
		submissions.AssertExpectations(t)
		projects.AssertExpectations(t)
	})
}

func TestProjectService_TotalsCaching(t *testing.T) {
	ctx := context.Background()

	projects := &MockProjectRepo{}
	projects.On("Totals", mock.Anything).Return(&repo.ProgramTotals{
		TotalHackatimeHours: 120.5,
		TotalUsers:          12,
		TotalProjects:       20,
	}, nil).Once()

	svc := NewProjectService(projects, &MockSubmissionRepo{}, testRedis(t), cacheConfig(), zap.NewNop())

	first, err := svc.Totals(ctx)
	require.NoError(t, err)
	second, err := svc.Totals(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 120.5, second.TotalHackatimeHours)
	projects.AssertExpectations(t)
}
