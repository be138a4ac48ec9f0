package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/taskboard/core"
	"github.com/layer-3/taskboard/service"
)

// Services bundles the use cases the router exposes.
type Services struct {
	Gate  *service.Gate
	Auth  *service.AuthService
	Tasks *service.TaskService
	Admin *service.AdminService
}

// Options tunes cross-cutting middleware. A nil RateLimiter disables limiting.
type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	RateLimiter    *RateLimiter
}

// SetupRouter sets up the Gin router
func SetupRouter(svc Services, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	router := gin.New()
	router.Use(Recovery(log), RequestLogger(log), CORS(opts.AllowedOrigins))
	router.NoRoute(func(c *gin.Context) {
		abortWithMessage(c, http.StatusNotFound, "Route not found")
	})

	router.GET("/health", Health)

	api := router.Group("/api")
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.Middleware())
	}
	v1 := api.Group("/v1")

	authn := AuthMiddleware(svc.Gate)
	adminOnly := RequireRoles(core.RoleAdmin)

	authHandlers := NewAuthHandlers(svc.Auth)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandlers.Register)
		auth.POST("/login", authHandlers.Login)
		auth.POST("/logout", authn, authHandlers.Logout)
		auth.GET("/me", authn, authHandlers.Me)
	}

	taskHandlers := NewTaskHandlers(svc.Tasks)
	tasks := v1.Group("/tasks", authn)
	{
		tasks.GET("", taskHandlers.List)
		tasks.POST("", taskHandlers.Create)
		tasks.GET("/admin/all", adminOnly, taskHandlers.ListAll)
		tasks.GET("/:id", taskHandlers.Get)
		tasks.PUT("/:id", taskHandlers.Update)
		tasks.DELETE("/:id", taskHandlers.Delete)
	}

	adminHandlers := NewAdminHandlers(svc.Admin)
	admin := v1.Group("/admin", authn, adminOnly)
	{
		admin.GET("/users", adminHandlers.ListUsers)
		admin.PUT("/users/:id/role", adminHandlers.UpdateRole)
		admin.DELETE("/users/:id", adminHandlers.DeleteUser)
	}

	return router
}
