package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nystar1/midnight/internal/config"
	"github.com/nystar1/midnight/internal/infra/httpclient"
	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func notifyConfig() *config.Config {
	return &config.Config{
		RabbitMQ: config.RabbitMQConfig{MailerQueue: "midnight.mailer"},
	}
}

func TestNotifyService_ChannelIsolation(t *testing.T) {
	ctx := context.Background()
	user := &model.User{UserID: 7, Email: "alice@example.com"}
	outcome := httpclient.ReviewNotification{ProjectTitle: "Space Game", ProjectID: 10, Approved: true}

	t.Run("email failure does not suppress chat", func(t *testing.T) {
		emails := &MockEmailQueue{}
		chat := &MockChatSender{}
		failures := &MockSyncFailureRepo{}

		emails.On("PublishJSON", mock.Anything, "midnight.mailer", mock.Anything).Return(errors.New("broker down"))
		chat.On("SendReviewMessage", mock.Anything, "alice@example.com", outcome).Return(nil)
		failures.On("Record", mock.Anything, mock.MatchedBy(func(f *model.SyncFailure) bool {
			return f.Kind == model.SyncKindEmail
		})).Return(nil)

		svc := NewNotifyService(emails, chat, failures, notifyConfig(), zap.NewNop())
		svc.Notify(ctx, user, outcome)

		chat.AssertExpectations(t)
		failures.AssertExpectations(t)
	})

	t.Run("chat failure does not suppress email", func(t *testing.T) {
		emails := &MockEmailQueue{}
		chat := &MockChatSender{}
		failures := &MockSyncFailureRepo{}

		emails.On("PublishJSON", mock.Anything, "midnight.mailer", mock.MatchedBy(func(body any) bool {
			job, ok := body.(ReviewEmailJob)
			return ok && job.ToAddress == "alice@example.com"
		})).Return(nil)
		chat.On("SendReviewMessage", mock.Anything, "alice@example.com", outcome).Return(errors.New("webhook 500"))
		failures.On("Record", mock.Anything, mock.MatchedBy(func(f *model.SyncFailure) bool {
			return f.Kind == model.SyncKindSlack
		})).Return(nil)

		svc := NewNotifyService(emails, chat, failures, notifyConfig(), zap.NewNop())
		svc.Notify(ctx, user, outcome)

		emails.AssertExpectations(t)
		failures.AssertExpectations(t)
	})

	t.Run("missing user drops the notification quietly", func(t *testing.T) {
		emails := &MockEmailQueue{}
		chat := &MockChatSender{}

		svc := NewNotifyService(emails, chat, &MockSyncFailureRepo{}, notifyConfig(), zap.NewNop())
		svc.Notify(ctx, nil, outcome)

		emails.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything, mock.Anything)
		chat.AssertNotCalled(t, "SendReviewMessage", mock.Anything, mock.Anything, mock.Anything)
	})
}
