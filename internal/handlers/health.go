package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
	"github.com/projeto-integrador-integra/integra-backend/internal/services"
)

// HealthHandler reports the state of the storage backend and the task queue.
type HealthHandler struct {
	store repository.Store
	queue services.TaskQueue
}

func NewHealthHandler(store repository.Store, queue services.TaskQueue) *HealthHandler {
	return &HealthHandler{store: store, queue: queue}
}

// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := h.store.Ping(ctx); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	queueMode := "sync"
	if h.queue != nil && h.queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"service": "integra-backend",
		"components": gin.H{
			"database":   dbStatus,
			"queue_mode": queueMode,
		},
	})
}
