package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projeto-integrador-integra/integra-backend/internal/handlers"
	"github.com/projeto-integrador-integra/integra-backend/internal/metrics"
	"github.com/projeto-integrador-integra/integra-backend/internal/middleware"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// newRouter builds the gin engine with every route mounted and wraps it for
// tracing.
func newRouter(svc *appServices) http.Handler {
	r := gin.New()
	registerRoutes(r, svc)
	return otelhttp.NewHandler(r, "integra-backend")
}

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	cfg := svc.cfg

	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	if cfg.Metrics.Enabled {
		r.Use(metrics.GinMiddleware())
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, handlers.Metrics())
	}

	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	api.Use(middleware.Authenticate(cfg.Auth.DevHeaders))
	if svc.rateLimiter != nil {
		api.Use(svc.rateLimiter.Middleware())
	}
	api.Use(middleware.AuditLog())

	// Registration only needs an identity; everything else needs an account.
	api.POST("/users", svc.userHandler.Register)

	member := api.Group("", middleware.AttachPrincipal(svc.userService))
	member.GET("/users/me", svc.userHandler.Me)

	approved := member.Group("", middleware.RequireAccess())
	{
		approved.PATCH("/users/:id", svc.userHandler.Update)
		approved.GET("/users/:id/summary", svc.userHandler.Summary)

		approved.GET("/projects", svc.projectHandler.List)
		approved.GET("/projects/mine", svc.projectHandler.Mine)
		approved.GET("/projects/:id", svc.projectHandler.GetByID)
		approved.PATCH("/projects/:id", svc.projectHandler.Update)
		approved.PATCH("/projects/:id/status", svc.projectHandler.ChangeStatus)
		approved.DELETE("/projects/:id/participation", svc.projectHandler.Leave)
		approved.POST("/projects/:id/feedbacks", svc.projectHandler.SubmitFeedback)
		approved.GET("/projects/:id/feedbacks", svc.projectHandler.Feedbacks)
	}

	company := member.Group("", middleware.RequireAccess(models.RoleCompany))
	{
		company.POST("/projects", svc.projectHandler.Create)
	}

	participants := member.Group("", middleware.RequireAccess(models.RoleDev, models.RoleMentor))
	{
		participants.GET("/projects/explore", svc.projectHandler.Explore)
		participants.POST("/projects/:id/apply", svc.projectHandler.Apply)
	}

	admin := member.Group("", middleware.RequireAccess(models.RoleAdmin))
	{
		admin.GET("/users", svc.userHandler.List)
		admin.GET("/users/:id", svc.userHandler.GetByID)
		admin.PATCH("/projects/:id/approval", svc.projectHandler.ChangeApproval)
	}
}
