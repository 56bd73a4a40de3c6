package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/nystar1/midnight/internal/bootstrap"
	"github.com/nystar1/midnight/internal/config"
	"github.com/nystar1/midnight/internal/infra/httpclient"
	mq "github.com/nystar1/midnight/internal/infra/queue"
	"github.com/nystar1/midnight/internal/modules/service"
	amqp "github.com/rabbitmq/amqp091-go"
)

// The mailer worker drains the review email queue and forwards each job to
// the mail delivery service. It runs as its own process so a slow or failing
// mail provider never backs up the API.
func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer log.Sync()

	conn := do.MustInvoke[*amqp.Connection](inj)
	consumer, err := mq.NewConsumer(conn, cfg.RabbitMQ.MailerQueue, cfg.Mailer.Prefetch, log, cfg)
	if err != nil {
		log.Fatal("failed to create consumer", zap.Error(err))
	}
	defer consumer.Close()

	mailer := httpclient.NewMailerClient(cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("mailer worker started", zap.String("queue", cfg.RabbitMQ.MailerQueue))

	err = consumer.Handle(ctx, func(body []byte) error {
		var job service.ReviewEmailJob
		if err := sonic.Unmarshal(body, &job); err != nil {
			// Malformed jobs would requeue forever; drop them loudly instead.
			log.Error("dropping malformed email job", zap.Error(err))
			return nil
		}
		return mailer.SendReviewEmail(ctx, job.ToAddress, job.Notification)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("consumer stopped", zap.Error(err))
	}

	log.Info("mailer worker stopped")
}
