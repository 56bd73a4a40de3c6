package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nystar1/midnight/internal/config"
	"github.com/nystar1/midnight/internal/middleware"
	"github.com/nystar1/midnight/internal/modules/handler"
	"github.com/nystar1/midnight/internal/modules/serializer"
	"github.com/nystar1/midnight/internal/telemetry"
)

type RouterDeps struct {
	Config             *config.Config
	Log                *zap.Logger
	SubmissionHandler  *handler.SubmissionHandler
	ProjectHandler     *handler.ProjectHandler
	EditRequestHandler *handler.EditRequestHandler
	StatsHandler       *handler.StatsHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	// Initialize logger for serializer package
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	admin := r.Group("/api/admin")
	{
		admin.Use(middleware.AdminAuth(d.Config))

		// ping endpoint
		admin.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		submissions := admin.Group("/submissions")
		{
			submissions.PUT("/:id", d.SubmissionHandler.UpdateSubmission)
			submissions.POST("/:id/quick-approve", d.SubmissionHandler.QuickApprove)
		}

		projects := admin.Group("/projects")
		{
			projects.POST("/recalculate-all", d.ProjectHandler.RecalculateAll)
			projects.POST("/:id/recalculate", d.ProjectHandler.Recalculate)
			projects.PUT("/:id/fraud-flag", d.ProjectHandler.SetFraudFlag)
			projects.PUT("/:id/unlock", d.ProjectHandler.Unlock)
			projects.DELETE("/:id", d.ProjectHandler.DeleteProject)
		}

		editRequests := admin.Group("/edit-requests")
		{
			editRequests.PUT("/:id/approve", d.EditRequestHandler.Approve)
			editRequests.PUT("/:id/reject", d.EditRequestHandler.Reject)
		}

		admin.GET("/reviewer-leaderboard", d.StatsHandler.ReviewerLeaderboard)
		admin.GET("/totals", d.StatsHandler.Totals)
		admin.GET("/users/:id/hackatime-projects", d.StatsHandler.TrackedProjects)
		admin.GET("/sync-failures", d.StatsHandler.SyncFailures)
	}

	return r
}
