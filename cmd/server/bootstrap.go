package main

import (
	"context"
	"fmt"

	"github.com/projeto-integrador-integra/integra-backend/internal/config"
	"github.com/projeto-integrador-integra/integra-backend/internal/handlers"
	"github.com/projeto-integrador-integra/integra-backend/internal/middleware"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository/gormstore"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository/memory"
	"github.com/projeto-integrador-integra/integra-backend/internal/services"
	"github.com/projeto-integrador-integra/integra-backend/internal/utils"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
)

// appServices holds the initialized services and handlers of the application.
type appServices struct {
	cfg            *config.Config
	store          repository.Store
	taskQueue      services.TaskQueue
	worker         *services.Worker
	statsService   *services.StatsService
	userService    *services.UserService
	rateLimiter    *middleware.RateLimiter
	projectHandler *handlers.ProjectHandler
	userHandler    *handlers.UserHandler
	healthHandler  *handlers.HealthHandler
}

// bootstrap wires storage, the notification pipeline, the stats job and the
// HTTP handlers.
func bootstrap(ctx context.Context, cfg *config.Config) (*appServices, error) {
	utils.SetJWTSecret(cfg.Auth.JWTSecret)
	if cfg.Auth.Issuer != "" {
		utils.SetJWTIssuer(cfg.Auth.Issuer)
	}
	if cfg.Auth.DevHeaders && cfg.IsProduction() {
		logger.Warn().Msg("Dev identity headers are enabled in release mode")
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	// Anything started before a failure is torn down again.
	svc := &appServices{cfg: cfg, store: store}
	fail := func(err error) (*appServices, error) {
		svc.shutdown()
		return nil, err
	}

	// Uses Redis when enabled, otherwise delivers in-process.
	taskQueue := services.InitTaskQueue(cfg)
	svc.taskQueue = taskQueue
	emailService := services.NewEmailService(services.NewMailTransport(&cfg.Mail), cfg.Mail.AppURL)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(emailService.Process)
	}

	var worker *services.Worker
	if taskQueue.IsAsync() {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(emailService.Process)
			if err := worker.Start(); err != nil {
				return fail(err)
			}
			svc.worker = worker
		}
	}

	notifier := services.NewNotificationService(taskQueue)
	projectService := services.NewProjectService(store, notifier, &cfg.Project)
	userService := services.NewUserService(store, notifier)

	if err := userService.EnsureAdmin(ctx, &cfg.Admin); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed admin user")
	}

	statsService := services.NewStatsService(store, cfg.Project.StatsSchedule)
	if err := statsService.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial stats refresh failed")
	}
	if err := statsService.StartScheduler(); err != nil {
		return fail(fmt.Errorf("start stats scheduler: %w", err))
	}
	svc.statsService = statsService

	if cfg.Server.RateLimit > 0 {
		svc.rateLimiter = middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	}

	svc.userService = userService
	svc.projectHandler = handlers.NewProjectHandler(projectService)
	svc.userHandler = handlers.NewUserHandler(userService, projectService)
	svc.healthHandler = handlers.NewHealthHandler(store, taskQueue)
	return svc, nil
}

func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn().Msg("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	}

	if err := models.InitDB(&cfg.Database, cfg.Log.Level == "debug"); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := models.AutoMigrate(models.GetDB()); err != nil {
		closeDB()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return gormstore.New(models.GetDB()), nil
}

// shutdown stops background work. The task queue is closed last so that
// in-flight notifications drain. It tolerates a partially built appServices.
func (s *appServices) shutdown() {
	if s.statsService != nil {
		s.statsService.StopScheduler()
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Close()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Close(); err != nil {
			logger.Warn().Err(err).Msg("Task queue close failed")
		}
	}
	closeDB()
	logger.Info().Msg("All services stopped")
}

func closeDB() {
	if db := models.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
