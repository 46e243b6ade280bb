package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/projeto-integrador-integra/integra-backend/internal/metrics"
)

// Metrics serves the Prometheus registry in text exposition format.
// GET /metrics
func Metrics() gin.HandlerFunc {
	return gin.WrapH(metrics.Handler())
}
