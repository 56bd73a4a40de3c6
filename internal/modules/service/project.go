package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nystar1/midnight/internal/config"
	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/nystar1/midnight/internal/modules/repo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const totalsCacheKey = "midnight:program_totals"

// ProjectService covers the admin project actions outside the review path.
type ProjectService interface {
	SetFraudFlag(ctx context.Context, projectID int64, fraud bool) (*model.Project, error)
	Unlock(ctx context.Context, projectID int64) (*model.Project, error)
	Delete(ctx context.Context, projectID int64) error
	// Totals reports program-wide aggregates, cached for the configured TTL.
	Totals(ctx context.Context) (*repo.ProgramTotals, error)
}

type projectService struct {
	projects    repo.ProjectRepo
	submissions repo.SubmissionRepo
	rdb         *redis.Client
	cfg         *config.Config
	log         *zap.Logger
}

func NewProjectService(projects repo.ProjectRepo, submissions repo.SubmissionRepo, rdb *redis.Client, cfg *config.Config, log *zap.Logger) ProjectService {
	return &projectService{
		projects:    projects,
		submissions: submissions,
		rdb:         rdb,
		cfg:         cfg,
		log:         log,
	}
}

func (s *projectService) SetFraudFlag(ctx context.Context, projectID int64, fraud bool) (*model.Project, error) {
	project, err := s.projects.GetWithUser(ctx, projectID)
	if err != nil {
		return nil, dbErr(err)
	}
	if err := s.projects.UpdateFields(ctx, projectID, map[string]any{"is_fraud": fraud}); err != nil {
		return nil, err
	}
	project.IsFraud = fraud
	return project, nil
}

func (s *projectService) Unlock(ctx context.Context, projectID int64) (*model.Project, error) {
	project, err := s.projects.GetWithUser(ctx, projectID)
	if err != nil {
		return nil, dbErr(err)
	}
	if err := s.projects.UpdateFields(ctx, projectID, map[string]any{"is_locked": false}); err != nil {
		return nil, err
	}
	project.IsLocked = false
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, projectID int64) error {
	// Submissions go with the project via FK cascade; record how many for
	// the audit trail before they disappear.
	count, err := s.submissions.CountForProject(ctx, projectID)
	if err != nil {
		s.log.Warn("failed to count submissions before delete",
			zap.Int64("project_id", projectID),
			zap.Error(err))
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return dbErr(err)
	}
	s.log.Info("project deleted",
		zap.Int64("project_id", projectID),
		zap.Int64("cascaded_submissions", count))
	return nil
}

func (s *projectService) Totals(ctx context.Context) (*repo.ProgramTotals, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, totalsCacheKey).Bytes()
		if err == nil {
			var totals repo.ProgramTotals
			if err := sonic.Unmarshal(raw, &totals); err == nil {
				return &totals, nil
			}
		} else if err != redis.Nil {
			s.log.Warn("totals cache read failed", zap.Error(err))
		}
	}

	totals, err := s.projects.Totals(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := sonic.Marshal(totals); err == nil {
			ttl := time.Duration(s.cfg.Redis.AggregateTTLSec) * time.Second
			if ttl <= 0 {
				ttl = time.Minute
			}
			if err := s.rdb.Set(ctx, totalsCacheKey, raw, ttl).Err(); err != nil {
				s.log.Warn("totals cache write failed", zap.Error(err))
			}
		}
	}
	return totals, nil
}
