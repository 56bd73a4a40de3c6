package bootstrap

import (
	"crypto/tls"
	"strings"

	"github.com/nystar1/midnight/internal/config"
	"github.com/nystar1/midnight/internal/infra/cache"
	"github.com/nystar1/midnight/internal/infra/db"
	"github.com/nystar1/midnight/internal/infra/httpclient"
	"github.com/nystar1/midnight/internal/infra/logger"
	mq "github.com/nystar1/midnight/internal/infra/queue"
	"github.com/nystar1/midnight/internal/modules/handler"
	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/nystar1/midnight/internal/modules/repo"
	"github.com/nystar1/midnight/internal/modules/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			_ = d.AutoMigrate(
				&model.User{},
				&model.Project{},
				&model.Submission{},
				&model.EditRequest{},
				&model.SyncFailure{},
			)
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg)
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)

		// Check if TLS is enabled via config or URL protocol
		useTLS := cfg.RabbitMQ.EnableTLS || strings.HasPrefix(cfg.RabbitMQ.URL, "amqps://")
		if useTLS {
			tlsConfig := &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
			url := cfg.RabbitMQ.URL
			if strings.HasPrefix(url, "amqp://") {
				url = strings.Replace(url, "amqp://", "amqps://", 1)
			}
			return amqp.DialTLS(url, tlsConfig)
		}
		return amqp.Dial(cfg.RabbitMQ.URL)
	})

	// RabbitMQ Publisher
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		conn := do.MustInvoke[*amqp.Connection](i)
		log := do.MustInvoke[*zap.Logger](i)
		return mq.NewPublisher(conn, log, cfg)
	})

	// External clients
	do.Provide(inj, func(i *do.Injector) (*httpclient.HackatimeClient, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return httpclient.NewHackatimeClient(cfg, log), nil
	})
	do.Provide(inj, func(i *do.Injector) (*httpclient.AirtableClient, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return httpclient.NewAirtableClient(cfg, log), nil
	})
	do.Provide(inj, func(i *do.Injector) (*httpclient.SlackClient, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return httpclient.NewSlackClient(cfg, log), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.SubmissionRepo, error) {
		return repo.NewSubmissionRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.EditRequestRepo, error) {
		return repo.NewEditRequestRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.SyncFailureRepo, error) {
		return repo.NewSyncFailureRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.HoursService, error) {
		return service.NewHoursService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*httpclient.HackatimeClient](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.RecordSyncService, error) {
		return service.NewRecordSyncService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[repo.SyncFailureRepo](i),
			do.MustInvoke[*httpclient.AirtableClient](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.NotifyService, error) {
		return service.NewNotifyService(
			do.MustInvoke[*mq.Publisher](i),
			do.MustInvoke[*httpclient.SlackClient](i),
			do.MustInvoke[repo.SyncFailureRepo](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.EditRequestService, error) {
		return service.NewEditRequestService(
			do.MustInvoke[repo.EditRequestRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[service.HoursService](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ReviewService, error) {
		return service.NewReviewService(
			do.MustInvoke[repo.SubmissionRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[service.RecordSyncService](i),
			do.MustInvoke[service.EditRequestService](i),
			do.MustInvoke[service.NotifyService](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.LeaderboardService, error) {
		return service.NewLeaderboardService(
			do.MustInvoke[repo.SubmissionRepo](i),
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.SubmissionRepo](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.SubmissionHandler, error) {
		return handler.NewSubmissionHandler(do.MustInvoke[service.ReviewService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(
			do.MustInvoke[service.HoursService](i),
			do.MustInvoke[service.ProjectService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.EditRequestHandler, error) {
		return handler.NewEditRequestHandler(do.MustInvoke[service.EditRequestService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.StatsHandler, error) {
		return handler.NewStatsHandler(
			do.MustInvoke[service.LeaderboardService](i),
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[service.HoursService](i),
			do.MustInvoke[service.RecordSyncService](i),
		), nil
	})
	return inj
}
