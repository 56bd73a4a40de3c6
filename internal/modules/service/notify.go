package service

import (
	"context"
	"sync"

	"github.com/nystar1/midnight/internal/config"
	"github.com/nystar1/midnight/internal/infra/httpclient"
	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/nystar1/midnight/internal/modules/repo"
	"github.com/nystar1/midnight/internal/telemetry"
	"go.uber.org/zap"
)

// EmailQueue is the slice of the message queue publisher the dispatcher needs.
type EmailQueue interface {
	PublishJSON(ctx context.Context, queueName string, body any) error
}

// ChatSender is the slice of the Slack client the dispatcher needs.
type ChatSender interface {
	SendReviewMessage(ctx context.Context, toAddress string, n httpclient.ReviewNotification) error
}

// NotifyService fans a review outcome out to the email and chat channels.
// Each channel fails independently; neither failure reaches the caller.
type NotifyService interface {
	Notify(ctx context.Context, user *model.User, n httpclient.ReviewNotification)
}

type notifyService struct {
	emails   EmailQueue
	chat     ChatSender
	failures repo.SyncFailureRepo
	cfg      *config.Config
	log      *zap.Logger
}

func NewNotifyService(emails EmailQueue, chat ChatSender, failures repo.SyncFailureRepo, cfg *config.Config, log *zap.Logger) NotifyService {
	return &notifyService{
		emails:   emails,
		chat:     chat,
		failures: failures,
		cfg:      cfg,
		log:      log,
	}
}

// ReviewEmailJob is the message consumed by the mailer worker.
type ReviewEmailJob struct {
	ToAddress    string                        `json:"to_address"`
	Notification httpclient.ReviewNotification `json:"notification"`
}

func (s *notifyService) Notify(ctx context.Context, user *model.User, n httpclient.ReviewNotification) {
	if user == nil {
		s.log.Warn("notification requested without a user, dropping",
			zap.Int64("project_id", n.ProjectID))
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		job := ReviewEmailJob{ToAddress: user.Email, Notification: n}
		if err := s.emails.PublishJSON(ctx, s.cfg.RabbitMQ.MailerQueue, job); err != nil {
			s.journal(ctx, model.SyncKindEmail, n.ProjectID, err)
		}
	}()

	go func() {
		defer wg.Done()
		if err := s.chat.SendReviewMessage(ctx, user.Email, n); err != nil {
			s.journal(ctx, model.SyncKindSlack, n.ProjectID, err)
		}
	}()

	wg.Wait()
}

func (s *notifyService) journal(ctx context.Context, kind string, projectID int64, cause error) {
	s.log.Error("notification channel failed",
		zap.String("channel", kind),
		zap.Int64("project_id", projectID),
		zap.Error(cause))
	telemetry.RecordSyncFailure(ctx, kind)

	failure := &model.SyncFailure{
		Kind:      kind,
		ProjectID: &projectID,
		ErrorMsg:  cause.Error(),
	}
	if err := s.failures.Record(ctx, failure); err != nil {
		s.log.Error("failed to journal notification failure", zap.Error(err))
	}
}
