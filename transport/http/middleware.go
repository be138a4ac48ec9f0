package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/internal/logctx"
	"github.com/layer-3/taskboard/service"
	"github.com/rs/cors"
)

const requestIDHeader = "X-Request-ID"

// AuthMiddleware creates middleware that authenticates the bearer token and
// stores the resulting principal on the gin context.
func AuthMiddleware(gate *service.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := gate.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, err)
			return
		}

		setPrincipal(c, p)
		c.Next()
	}
}

// RequireRoles rejects principals whose role is not in roles. It must run
// after AuthMiddleware.
func RequireRoles(roles ...core.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			abortWithError(c, core.ErrUnauthenticated)
			return
		}
		if err := service.Authorize(p.Identity, roles...); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequestLogger attaches a request-scoped logger to the request context and
// writes one line per request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		l := log.With(slog.String("request_id", id))
		c.Request = c.Request.WithContext(logctx.Into(c.Request.Context(), l))

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		l.Log(c.Request.Context(), level, "http_request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// Recovery turns a panic into a 500 with the standard error body.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic_recovered", "panic", recovered, "path", c.Request.URL.Path)
		abortWithMessage(c, http.StatusInternalServerError, "Internal server error")
	})
}

// CORS allows the configured origins with credentials. Preflight requests
// are answered here and never reach the router.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cr := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	})

	return func(c *gin.Context) {
		cr.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
		}
	}
}
