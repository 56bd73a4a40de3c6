package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func hoursProject(id int64, account *string, names ...string) model.Project {
	user := &model.User{UserID: id * 100, HackatimeAccount: account}
	return model.Project{
		ProjectID:            id,
		UserID:               user.UserID,
		ProjectTitle:         "p",
		NowHackatimeProjects: datatypes.NewJSONSlice(names),
		User:                 user,
	}
}

func TestHoursService_Recalculate(t *testing.T) {
	ctx := context.Background()

	t.Run("zero claimed names yields zero without network", func(t *testing.T) {
		projects := &MockProjectRepo{}
		users := &MockUserRepo{}
		tracker := &MockTimeTracker{}

		project := hoursProject(1, ptr("acct-a"))
		projects.On("GetWithUser", mock.Anything, int64(1)).Return(&project, nil)
		projects.On("UpdateFields", mock.Anything, int64(1), map[string]any{
			"now_hackatime_hours": 0.0,
		}).Return(nil)

		svc := NewHoursService(projects, users, tracker, zap.NewNop())
		out, err := svc.Recalculate(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0.0, out.NowHackatimeHours)

		tracker.AssertNotCalled(t, "StatsSince", mock.Anything, mock.Anything, mock.Anything)
		projects.AssertExpectations(t)
	})

	t.Run("missing account is an error in strict mode", func(t *testing.T) {
		projects := &MockProjectRepo{}
		tracker := &MockTimeTracker{}

		project := hoursProject(1, nil, "game")
		projects.On("GetWithUser", mock.Anything, int64(1)).Return(&project, nil)

		svc := NewHoursService(projects, &MockUserRepo{}, tracker, zap.NewNop())
		_, err := svc.Recalculate(ctx, 1)
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("sums claimed names and rounds to tenths", func(t *testing.T) {
		projects := &MockProjectRepo{}
		tracker := &MockTimeTracker{}

		project := hoursProject(1, ptr("acct-a"), "game", "engine")
		projects.On("GetWithUser", mock.Anything, int64(1)).Return(&project, nil)
		tracker.On("StatsSince", mock.Anything, "acct-a", hoursCutoff).Return(map[string]float64{
			"game":   40000,
			"engine": 4280,
			"other":  99999,
		}, nil)
		// 44280s == 12.3h exactly; "other" is not claimed and must not count.
		projects.On("UpdateFields", mock.Anything, int64(1), map[string]any{
			"now_hackatime_hours": 12.3,
		}).Return(nil)

		svc := NewHoursService(projects, &MockUserRepo{}, tracker, zap.NewNop())
		out, err := svc.Recalculate(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 12.3, out.NowHackatimeHours)
	})
}

func TestHoursService_RecalculateAll(t *testing.T) {
	ctx := context.Background()

	t.Run("one fetch per account, skips without aborting", func(t *testing.T) {
		projects := &MockProjectRepo{}
		tracker := &MockTimeTracker{}

		// Two projects share one account, a third has none.
		all := []model.Project{
			hoursProject(1, ptr("acct-a"), "game"),
			hoursProject(2, ptr("acct-a"), "engine"),
			hoursProject(3, nil, "tool"),
		}
		projects.On("ListWithUsers", mock.Anything).Return(all, nil)
		tracker.On("StatsSince", mock.Anything, "acct-a", hoursCutoff).Return(map[string]float64{
			"game":   40000,
			"engine": 4280,
		}, nil).Once()
		projects.On("UpdateFields", mock.Anything, int64(1), map[string]any{
			"now_hackatime_hours": 11.1,
		}).Return(nil)
		projects.On("UpdateFields", mock.Anything, int64(2), map[string]any{
			"now_hackatime_hours": 1.2,
		}).Return(nil)

		svc := NewHoursService(projects, &MockUserRepo{}, tracker, zap.NewNop())
		out, err := svc.RecalculateAll(ctx)
		require.NoError(t, err)

		assert.Equal(t, 3, out.Processed)
		assert.Equal(t, 2, out.Updated)
		require.Len(t, out.Skipped, 1)
		assert.Equal(t, int64(3), out.Skipped[0].ProjectID)
		assert.Equal(t, SkipReasonMissingAccount, out.Skipped[0].Reason)
		assert.Empty(t, out.Errors)

		tracker.AssertExpectations(t)
		projects.AssertExpectations(t)
	})

	t.Run("transport failure degrades to zero hours", func(t *testing.T) {
		projects := &MockProjectRepo{}
		tracker := &MockTimeTracker{}

		all := []model.Project{hoursProject(1, ptr("acct-b"), "game")}
		projects.On("ListWithUsers", mock.Anything).Return(all, nil)
		tracker.On("StatsSince", mock.Anything, "acct-b", hoursCutoff).Return(nil, errors.New("timeout"))
		projects.On("UpdateFields", mock.Anything, int64(1), map[string]any{
			"now_hackatime_hours": 0.0,
		}).Return(nil)

		svc := NewHoursService(projects, &MockUserRepo{}, tracker, zap.NewNop())
		out, err := svc.RecalculateAll(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, out.Updated)
		assert.Empty(t, out.Errors)
	})

	t.Run("per-project write failure is collected, not fatal", func(t *testing.T) {
		projects := &MockProjectRepo{}
		tracker := &MockTimeTracker{}

		all := []model.Project{
			hoursProject(1, ptr("acct-a")),
			hoursProject(2, ptr("acct-a")),
		}
		projects.On("ListWithUsers", mock.Anything).Return(all, nil)
		projects.On("UpdateFields", mock.Anything, int64(1), mock.Anything).Return(errors.New("deadlock"))
		projects.On("UpdateFields", mock.Anything, int64(2), mock.Anything).Return(nil)

		svc := NewHoursService(projects, &MockUserRepo{}, tracker, zap.NewNop())
		out, err := svc.RecalculateAll(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, out.Processed)
		assert.Equal(t, 1, out.Updated)
		require.Len(t, out.Errors, 1)
		assert.Equal(t, int64(1), out.Errors[0].ProjectID)
	})
}

func TestRoundTenths(t *testing.T) {
	assert.Equal(t, 12.3, roundTenths(12.3))
	assert.Equal(t, 11.1, roundTenths(40000.0/3600))
	assert.Equal(t, 0.1, roundTenths(0.05))
	assert.Equal(t, 0.0, roundTenths(0.04))
}
