package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projeto-integrador-integra/integra-backend/internal/config"
	"github.com/projeto-integrador-integra/integra-backend/internal/tracing"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
)

const serviceName = "integra-backend"

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, &cfg.Tracing, serviceName)
	if err != nil {
		logger.Warn().Err(err).Msg("Tracing disabled")
	}

	svc, err := bootstrap(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           newRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("mode", cfg.Server.Mode).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	svc.shutdown()

	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Tracer shutdown failed")
		}
	}

	logger.Info().Msg("Server exited")
}
