package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nystar1/midnight/internal/modules/serializer"
	"github.com/nystar1/midnight/internal/modules/service"
)

type StatsHandler struct {
	leaderboard service.LeaderboardService
	projects    service.ProjectService
	hours       service.HoursService
	sync        service.RecordSyncService
}

func NewStatsHandler(leaderboard service.LeaderboardService, projects service.ProjectService, hours service.HoursService, sync service.RecordSyncService) *StatsHandler {
	return &StatsHandler{leaderboard: leaderboard, projects: projects, hours: hours, sync: sync}
}

func (h *StatsHandler) ReviewerLeaderboard(c *gin.Context) {
	entries, err := h.leaderboard.Leaderboard(c.Request.Context())
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: entries})
}

func (h *StatsHandler) Totals(c *gin.Context) {
	totals, err := h.projects.Totals(c.Request.Context())
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: totals})
}

// TrackedProjects lists a user's Hackatime projects with tracked seconds,
// for reviewers validating a claim.
func (h *StatsHandler) TrackedProjects(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	durations, err := h.hours.TrackedProjects(c.Request.Context(), userID)
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: durations})
}

// SyncFailures lists unresolved downstream sync failures, newest first.
func (h *StatsHandler) SyncFailures(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	failures, err := h.sync.RecentFailures(c.Request.Context(), limit)
	if err != nil {
		respondServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: failures})
}
