package service

import (
	"context"
	"testing"

	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pendingRequest(id, projectID int64, patch model.ProjectPatch) *model.EditRequest {
	return &model.EditRequest{
		RequestID:     id,
		ProjectID:     projectID,
		UserID:        7,
		RequestType:   model.RequestTypeProjectUpdate,
		RequestedData: patch,
		Status:        model.StatusPending,
	}
}

func TestEditRequestService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only the requested fields", func(t *testing.T) {
		requests := &MockEditRequestRepo{}
		projects := &MockProjectRepo{}
		hours := &MockHoursService{}

		request := pendingRequest(5, 10, model.ProjectPatch{
			ProjectTitle: ptr("New Title"),
			RepoURL:      ptr("https://github.com/alice/game2"),
		})
		requests.On("Get", mock.Anything, int64(5)).Return(request, nil)
		projects.On("UpdateFields", mock.Anything, int64(10), mock.MatchedBy(func(fields map[string]any) bool {
			_, hasDescription := fields["description"]
			return fields["project_title"] == "New Title" &&
				fields["repo_url"] == "https://github.com/alice/game2" &&
				!hasDescription
		})).Return(nil)
		requests.On("UpdateFields", mock.Anything, int64(5), mock.MatchedBy(func(fields map[string]any) bool {
			_, hasAt := fields["reviewed_at"]
			return fields["status"] == model.StatusApproved &&
				fields["reviewed_by"] == int64(42) && hasAt
		})).Return(nil)

		svc := NewEditRequestService(requests, projects, hours, zap.NewNop())
		out, err := svc.Approve(ctx, 5, 42)
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, out.Status)
		require.NotNil(t, out.ReviewedBy)
		assert.Equal(t, int64(42), *out.ReviewedBy)

		hours.AssertNotCalled(t, "Recalculate", mock.Anything, mock.Anything)
		requests.AssertExpectations(t)
		projects.AssertExpectations(t)
	})

	t.Run("changed hackatime claims trigger a best-effort recalculation", func(t *testing.T) {
		requests := &MockEditRequestRepo{}
		projects := &MockProjectRepo{}
		hours := &MockHoursService{}

		request := pendingRequest(5, 10, model.ProjectPatch{
			NowHackatimeProjects: ptr([]string{"game", "engine"}),
		})
		requests.On("Get", mock.Anything, int64(5)).Return(request, nil)
		projects.On("UpdateFields", mock.Anything, int64(10), mock.Anything).Return(nil)
		hours.On("Recalculate", mock.Anything, int64(10)).Return(nil, ErrInvalidRequest)
		requests.On("UpdateFields", mock.Anything, int64(5), mock.Anything).Return(nil)

		svc := NewEditRequestService(requests, projects, hours, zap.NewNop())
		_, err := svc.Approve(ctx, 5, 42)
		// Recalculation failure never blocks the approval.
		require.NoError(t, err)

		hours.AssertExpectations(t)
	})

	t.Run("terminal request conflicts", func(t *testing.T) {
		requests := &MockEditRequestRepo{}
		request := pendingRequest(5, 10, model.ProjectPatch{})
		request.Status = model.StatusApproved
		requests.On("Get", mock.Anything, int64(5)).Return(request, nil)

		svc := NewEditRequestService(requests, &MockProjectRepo{}, &MockHoursService{}, zap.NewNop())
		_, err := svc.Approve(ctx, 5, 42)
		require.ErrorIs(t, err, ErrConflict)
	})
}

func TestEditRequestService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a reason", func(t *testing.T) {
		svc := NewEditRequestService(&MockEditRequestRepo{}, &MockProjectRepo{}, &MockHoursService{}, zap.NewNop())
		_, err := svc.Reject(ctx, 5, 42, "")
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("stamps reviewer, time and reason", func(t *testing.T) {
		requests := &MockEditRequestRepo{}
		request := pendingRequest(5, 10, model.ProjectPatch{})
		requests.On("Get", mock.Anything, int64(5)).Return(request, nil)
		requests.On("UpdateFields", mock.Anything, int64(5), mock.MatchedBy(func(fields map[string]any) bool {
			return fields["status"] == model.StatusRejected &&
				fields["reason"] == "duplicate request" &&
				fields["reviewed_by"] == int64(42)
		})).Return(nil)

		svc := NewEditRequestService(requests, &MockProjectRepo{}, &MockHoursService{}, zap.NewNop())
		out, err := svc.Reject(ctx, 5, 42, "duplicate request")
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, out.Status)
		require.NotNil(t, out.Reason)
		assert.Equal(t, "duplicate request", *out.Reason)
	})
}

func TestEditRequestService_Cascade(t *testing.T) {
	ctx := context.Background()

	t.Run("rejection cascades with the fixed reason", func(t *testing.T) {
		requests := &MockEditRequestRepo{}
		pending := []model.EditRequest{
			*pendingRequest(5, 10, model.ProjectPatch{}),
			*pendingRequest(6, 10, model.ProjectPatch{}),
		}
		requests.On("ListPendingProjectUpdates", mock.Anything, int64(10)).Return(pending, nil)
		for _, id := range []int64{5, 6} {
			requests.On("UpdateFields", mock.Anything, id, mock.MatchedBy(func(fields map[string]any) bool {
				return fields["status"] == model.StatusRejected &&
					fields["reason"] == "Auto-rejected: Submission was rejected" &&
					fields["reviewed_by"] == int64(42)
			})).Return(nil)
		}

		svc := NewEditRequestService(requests, &MockProjectRepo{}, &MockHoursService{}, zap.NewNop())
		svc.Cascade(ctx, 10, model.StatusRejected, 42)

		requests.AssertExpectations(t)
	})

	t.Run("approval cascades without a reason", func(t *testing.T) {
		requests := &MockEditRequestRepo{}
		pending := []model.EditRequest{*pendingRequest(5, 10, model.ProjectPatch{})}
		requests.On("ListPendingProjectUpdates", mock.Anything, int64(10)).Return(pending, nil)
		requests.On("UpdateFields", mock.Anything, int64(5), mock.MatchedBy(func(fields map[string]any) bool {
			_, hasReason := fields["reason"]
			return fields["status"] == model.StatusApproved && !hasReason
		})).Return(nil)

		svc := NewEditRequestService(requests, &MockProjectRepo{}, &MockHoursService{}, zap.NewNop())
		svc.Cascade(ctx, 10, model.StatusApproved, 42)

		requests.AssertExpectations(t)
	})
}
