package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nystar1/midnight/internal/config"
	"github.com/nystar1/midnight/internal/modules/serializer"
)

// AdminIDKey is the gin context key holding the authenticated reviewer id.
const AdminIDKey = "admin_id"

// AdminAuth returns a middleware that authenticates requests using the static
// admin bearer token and resolves the acting reviewer from the X-Admin-Id header.
// It also sets the admin_id attribute on the current span for telemetry filtering.
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		_, authSpan := otel.Tracer("middleware").Start(ctx, "admin_auth",
			trace.WithAttributes(attribute.String("middleware", "admin_auth")))

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		if cfg.Admin.APIToken == "" ||
			subtle.ConstantTimeCompare([]byte(raw), []byte(cfg.Admin.APIToken)) != 1 {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		adminID, err := strconv.ParseInt(c.GetHeader("X-Admin-Id"), 10, 64)
		if err != nil || adminID <= 0 {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("missing or invalid X-Admin-Id header"))
			return
		}

		// Set admin_id attribute on the current span for telemetry filtering
		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.Int64("admin_id", adminID))
		}

		authSpan.SetAttributes(
			attribute.Int64("admin_id", adminID),
			attribute.Bool("authenticated", true),
		)
		authSpan.End()

		c.Set(AdminIDKey, adminID)
		c.Next()
	}
}

// AdminID returns the authenticated reviewer id set by AdminAuth.
func AdminID(c *gin.Context) int64 {
	return c.GetInt64(AdminIDKey)
}
