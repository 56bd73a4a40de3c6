package service

import (
	"context"
	"time"

	"github.com/nystar1/midnight/internal/infra/httpclient"
	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/nystar1/midnight/internal/modules/repo"
	"github.com/stretchr/testify/mock"
)

// MockSubmissionRepo is a mock implementation of repo.SubmissionRepo
type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) GetWithProject(ctx context.Context, submissionID int64) (*model.Submission, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Submission), args.Error(1)
}

func (m *MockSubmissionRepo) UpdateFields(ctx context.Context, submissionID int64, fields map[string]any) error {
	args := m.Called(ctx, submissionID, fields)
	return args.Error(0)
}

func (m *MockSubmissionRepo) ListTerminalReviewed(ctx context.Context) ([]model.Submission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Submission), args.Error(1)
}

func (m *MockSubmissionRepo) CountForProject(ctx context.Context, projectID int64) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProjectRepo is a mock implementation of repo.ProjectRepo
type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) GetWithUser(ctx context.Context, projectID int64) (*model.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListWithUsers(ctx context.Context) ([]model.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectRepo) UpdateFields(ctx context.Context, projectID int64, fields map[string]any) error {
	args := m.Called(ctx, projectID, fields)
	return args.Error(0)
}

func (m *MockProjectRepo) Delete(ctx context.Context, projectID int64) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *MockProjectRepo) Totals(ctx context.Context) (*repo.ProgramTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.ProgramTotals), args.Error(1)
}

// MockUserRepo is a mock implementation of repo.UserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Get(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) GetByIDs(ctx context.Context, userIDs []int64) (map[int64]model.User, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]model.User), args.Error(1)
}

func (m *MockUserRepo) UpdateFields(ctx context.Context, userID int64, fields map[string]any) error {
	args := m.Called(ctx, userID, fields)
	return args.Error(0)
}

// MockEditRequestRepo is a mock implementation of repo.EditRequestRepo
type MockEditRequestRepo struct {
	mock.Mock
}

func (m *MockEditRequestRepo) Get(ctx context.Context, requestID int64) (*model.EditRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EditRequest), args.Error(1)
}

func (m *MockEditRequestRepo) ListPendingProjectUpdates(ctx context.Context, projectID int64) ([]model.EditRequest, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EditRequest), args.Error(1)
}

func (m *MockEditRequestRepo) UpdateFields(ctx context.Context, requestID int64, fields map[string]any) error {
	args := m.Called(ctx, requestID, fields)
	return args.Error(0)
}

// MockSyncFailureRepo is a mock implementation of repo.SyncFailureRepo
type MockSyncFailureRepo struct {
	mock.Mock
}

func (m *MockSyncFailureRepo) Record(ctx context.Context, f *model.SyncFailure) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockSyncFailureRepo) ListUnresolved(ctx context.Context, limit int) ([]model.SyncFailure, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SyncFailure), args.Error(1)
}

// MockTimeTracker is a mock implementation of TimeTracker
type MockTimeTracker struct {
	mock.Mock
}

func (m *MockTimeTracker) StatsSince(ctx context.Context, account string, since time.Time) (map[string]float64, error) {
	args := m.Called(ctx, account, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

func (m *MockTimeTracker) ProjectDurations(ctx context.Context, account string) (map[string]float64, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

// MockRecordStore is a mock implementation of RecordStore
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) CreateApprovedProject(ctx context.Context, payload httpclient.ApprovedProjectPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func (m *MockRecordStore) UpdateApprovedProject(ctx context.Context, recordID string, fields map[string]any) error {
	args := m.Called(ctx, recordID, fields)
	return args.Error(0)
}

// MockEmailQueue is a mock implementation of EmailQueue
type MockEmailQueue struct {
	mock.Mock
}

func (m *MockEmailQueue) PublishJSON(ctx context.Context, queueName string, body any) error {
	args := m.Called(ctx, queueName, body)
	return args.Error(0)
}

// MockChatSender is a mock implementation of ChatSender
type MockChatSender struct {
	mock.Mock
}

func (m *MockChatSender) SendReviewMessage(ctx context.Context, toAddress string, n httpclient.ReviewNotification) error {
	args := m.Called(ctx, toAddress, n)
	return args.Error(0)
}

// MockRecordSyncService is a mock implementation of RecordSyncService
type MockRecordSyncService struct {
	mock.Mock
}

func (m *MockRecordSyncService) SyncApprovedProject(ctx context.Context, project *model.Project, submission *model.Submission) (string, error) {
	args := m.Called(ctx, project, submission)
	return args.String(0), args.Error(1)
}

func (m *MockRecordSyncService) RecentFailures(ctx context.Context, limit int) ([]model.SyncFailure, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SyncFailure), args.Error(1)
}

// MockEditRequestService is a mock implementation of EditRequestService
type MockEditRequestService struct {
	mock.Mock
}

func (m *MockEditRequestService) Approve(ctx context.Context, requestID, reviewerID int64) (*model.EditRequest, error) {
	args := m.Called(ctx, requestID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EditRequest), args.Error(1)
}

func (m *MockEditRequestService) Reject(ctx context.Context, requestID, reviewerID int64, reason string) (*model.EditRequest, error) {
	args := m.Called(ctx, requestID, reviewerID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EditRequest), args.Error(1)
}

func (m *MockEditRequestService) Cascade(ctx context.Context, projectID int64, outcome string, reviewerID int64) {
	m.Called(ctx, projectID, outcome, reviewerID)
}

// MockNotifyService is a mock implementation of NotifyService
type MockNotifyService struct {
	mock.Mock
}

func (m *MockNotifyService) Notify(ctx context.Context, user *model.User, n httpclient.ReviewNotification) {
	m.Called(ctx, user, n)
}

// MockHoursService is a mock implementation of HoursService
type MockHoursService struct {
	mock.Mock
}

func (m *MockHoursService) Recalculate(ctx context.Context, projectID int64) (*model.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockHoursService) RecalculateAll(ctx context.Context) (*RecalculateAllOutput, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RecalculateAllOutput), args.Error(1)
}

func (m *MockHoursService) TrackedProjects(ctx context.Context, userID int64) (map[string]float64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}
