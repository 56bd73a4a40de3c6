package service

import (
	"context"
	"math"
	"time"

	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/nystar1/midnight/internal/modules/repo"
	"github.com/nystar1/midnight/internal/telemetry"
	"go.uber.org/zap"
)

// hoursCutoff marks the start of the current accounting period. Time tracked
// before it never counts toward credited hours.
var hoursCutoff = time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)

// SkipReasonMissingAccount is reported for projects whose owner has no
// linked Hackatime account.
const SkipReasonMissingAccount = "missing_account"

// TimeTracker is the slice of the Hackatime client the hours engine needs.
type TimeTracker interface {
	StatsSince(ctx context.Context, account string, since time.Time) (map[string]float64, error)
	ProjectDurations(ctx context.Context, account string) (map[string]float64, error)
}

type HoursService interface {
	// Recalculate reconciles a single project strictly: a missing Hackatime
	// account is an error rather than a skip.
	Recalculate(ctx context.Context, projectID int64) (*model.Project, error)
	// RecalculateAll reconciles every project, isolating per-project failures
	// and reusing one Hackatime fetch per distinct account.
	RecalculateAll(ctx context.Context) (*RecalculateAllOutput, error)
	// TrackedProjects lists every Hackatime project the user has tracked,
	// with total seconds. Review-time context for validating claims.
	TrackedProjects(ctx context.Context, userID int64) (map[string]float64, error)
}

type hoursService struct {
	projects repo.ProjectRepo
	users    repo.UserRepo
	tracker  TimeTracker
	log      *zap.Logger
}

func NewHoursService(projects repo.ProjectRepo, users repo.UserRepo, tracker TimeTracker, log *zap.Logger) HoursService {
	return &hoursService{
		projects: projects,
		users:    users,
		tracker:  tracker,
		log:      log,
	}
}

type SkippedProject struct {
	ProjectID int64  `json:"project_id"`
	Reason    string `json:"reason"`
}

type FailedProject struct {
	ProjectID int64  `json:"project_id"`
	Error     string `json:"error"`
}

type RecalculateAllOutput struct {
	Processed int              `json:"processed"`
	Updated   int              `json:"updated"`
	Skipped   []SkippedProject `json:"skipped"`
	Errors    []FailedProject  `json:"errors"`
}

// accountCache holds one Hackatime stats fetch per account for the duration
// of a single batch run. Never persisted, never shared across calls.
type accountCache map[string]map[string]float64

func (s *hoursService) Recalculate(ctx context.Context, projectID int64) (*model.Project, error) {
	project, err := s.projects.GetWithUser(ctx, projectID)
	if err != nil {
		return nil, dbErr(err)
	}

	cache := make(accountCache)
	hours, skip, err := s.reconcileOne(ctx, project, cache, true)
	if err != nil {
		return nil, err
	}
	if skip != nil {
		// Unreachable in strict mode, kept for symmetry.
		return nil, ErrInvalidRequest
	}

	if err := s.projects.UpdateFields(ctx, project.ProjectID, map[string]any{
		"now_hackatime_hours": hours,
	}); err != nil {
		return nil, err
	}
	project.NowHackatimeHours = hours
	return project, nil
}

func (s *hoursService) RecalculateAll(ctx context.Context) (*RecalculateAllOutput, error) {
	start := time.Now()

	projects, err := s.projects.ListWithUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := &RecalculateAllOutput{
		Skipped: []SkippedProject{},
		Errors:  []FailedProject{},
	}
	cache := make(accountCache)

	for i := range projects {
		project := &projects[i]
		out.Processed++

		hours, skip, err := s.reconcileOne(ctx, project, cache, false)
		if err != nil {
			out.Errors = append(out.Errors, FailedProject{ProjectID: project.ProjectID, Error: err.Error()})
			continue
		}
		if skip != nil {
			out.Skipped = append(out.Skipped, *skip)
			continue
		}

		if err := s.projects.UpdateFields(ctx, project.ProjectID, map[string]any{
			"now_hackatime_hours": hours,
		}); err != nil {
			out.Errors = append(out.Errors, FailedProject{ProjectID: project.ProjectID, Error: err.Error()})
			continue
		}
		out.Updated++
	}

	telemetry.RecordReconcile(ctx, float64(time.Since(start).Milliseconds()), int64(out.Processed))
	s.log.Info("hours recalculation finished",
		zap.Int("processed", out.Processed),
		zap.Int("updated", out.Updated),
		zap.Int("skipped", len(out.Skipped)),
		zap.Int("errors", len(out.Errors)))
	return out, nil
}

// reconcileOne computes the credited hours for one project. In strict mode a
// missing account is ErrInvalidRequest; otherwise it yields a skip marker.
// Hackatime transport errors degrade to zero durations so a batch run always
// makes forward progress.
func (s *hoursService) reconcileOne(ctx context.Context, project *model.Project, cache accountCache, strict bool) (float64, *SkippedProject, error) {
	if project.User == nil || project.User.HackatimeAccount == nil || *project.User.HackatimeAccount == "" {
		if strict {
			return 0, nil, ErrInvalidRequest
		}
		return 0, &SkippedProject{ProjectID: project.ProjectID, Reason: SkipReasonMissingAccount}, nil
	}

	names := []string(project.NowHackatimeProjects)
	if len(names) == 0 {
		// No claimed projects means zero hours, no network call.
		return 0, nil, nil
	}

	account := *project.User.HackatimeAccount
	durations, ok := cache[account]
	if !ok {
		var err error
		durations, err = s.tracker.StatsSince(ctx, account, hoursCutoff)
		if err != nil {
			s.log.Warn("hackatime fetch failed, treating durations as zero",
				zap.String("account", account),
				zap.Int64("project_id", project.ProjectID),
				zap.Error(err))
			durations = map[string]float64{}
		}
		cache[account] = durations
	}

	var seconds float64
	for _, name := range names {
		seconds += durations[name]
	}
	return roundTenths(seconds / 3600), nil, nil
}

func (s *hoursService) TrackedProjects(ctx context.Context, userID int64) (map[string]float64, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, dbErr(err)
	}
	if user.HackatimeAccount == nil || *user.HackatimeAccount == "" {
		return nil, ErrInvalidRequest
	}
	return s.tracker.ProjectDurations(ctx, *user.HackatimeAccount)
}

// roundTenths rounds to one decimal place, half away from zero.
func roundTenths(hours float64) float64 {
	return math.Round(hours*10) / 10
}
