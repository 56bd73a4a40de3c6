package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nystar1/midnight/internal/config"
	"github.com/nystar1/midnight/internal/modules/model"
	"github.com/nystar1/midnight/internal/modules/repo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const leaderboardCacheKey = "midnight:reviewer_leaderboard"

// LeaderboardEntry aggregates one reviewer's terminal review history. Name
// fields stay null when the reviewer id no longer matches a user row.
type LeaderboardEntry struct {
	ReviewerID     int64      `json:"reviewer_id"`
	FirstName      *string    `json:"first_name"`
	LastName       *string    `json:"last_name"`
	ApprovedCount  int64      `json:"approved_count"`
	RejectedCount  int64      `json:"rejected_count"`
	Total          int64      `json:"total"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
}

// LeaderboardService is a read-only aggregation over historical review
// actions, independent of the write path.
type LeaderboardService interface {
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)
}

type leaderboardService struct {
	submissions repo.SubmissionRepo
	users       repo.UserRepo
	rdb         *redis.Client
	cfg         *config.Config
	log         *zap.Logger
}

func NewLeaderboardService(submissions repo.SubmissionRepo, users repo.UserRepo, rdb *redis.Client, cfg *config.Config, log *zap.Logger) LeaderboardService {
	return &leaderboardService{
		submissions: submissions,
		users:       users,
		rdb:         rdb,
		cfg:         cfg,
		log:         log,
	}
}

func (s *leaderboardService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	submissions, err := s.submissions.ListTerminalReviewed(ctx)
	if err != nil {
		return nil, err
	}

	byReviewer := map[int64]*LeaderboardEntry{}
	order := []int64{}
	for _, submission := range submissions {
		reviewerID, err := strconv.ParseInt(*submission.ReviewedBy, 10, 64)
		if err != nil {
			s.log.Warn("skipping submission with non-numeric reviewer id",
				zap.Int64("submission_id", submission.SubmissionID),
				zap.String("reviewed_by", *submission.ReviewedBy))
			continue
		}

		entry, ok := byReviewer[reviewerID]
		if !ok {
			entry = &LeaderboardEntry{ReviewerID: reviewerID}
			byReviewer[reviewerID] = entry
			order = append(order, reviewerID)
		}

		switch submission.ApprovalStatus {
		case model.StatusApproved:
			entry.ApprovedCount++
		case model.StatusRejected:
			entry.RejectedCount++
		}
		entry.Total++
		if submission.ReviewedAt != nil &&
			(entry.LastReviewedAt == nil || submission.ReviewedAt.After(*entry.LastReviewedAt)) {
			reviewedAt := *submission.ReviewedAt
			entry.LastReviewedAt = &reviewedAt
		}
	}

	users, err := s.users.GetByIDs(ctx, order)
	if err != nil {
		return nil, err
	}
	for id, entry := range byReviewer {
		if user, ok := users[id]; ok {
			firstName, lastName := user.FirstName, user.LastName
			entry.FirstName = &firstName
			entry.LastName = &lastName
		}
	}

	entries := make([]LeaderboardEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, *byReviewer[id])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})

	s.toCache(ctx, entries)
	return entries, nil
}

func (s *leaderboardService) fromCache(ctx context.Context) []LeaderboardEntry {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, leaderboardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("leaderboard cache read failed", zap.Error(err))
		}
		return nil
	}
	var entries []LeaderboardEntry
	if err := sonic.Unmarshal(raw, &entries); err != nil {
		s.log.Warn("leaderboard cache decode failed", zap.Error(err))
		return nil
	}
	return entries
}

func (s *leaderboardService) toCache(ctx context.Context, entries []LeaderboardEntry) {
	if s.rdb == nil {
		return
	}
	raw, err := sonic.Marshal(entries)
	if err != nil {
		return
	}
	ttl := time.Duration(s.cfg.Redis.AggregateTTLSec) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := s.rdb.Set(ctx, leaderboardCacheKey, raw, ttl).Err(); err != nil {
		s.log.Warn("leaderboard cache write failed", zap.Error(err))
	}
}
