package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinLogger_WritesStructuredEntry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	InitWithWriter("info", &buf)
	t.Cleanup(func() { Init("info") })

	r := gin.New()
	r.Use(GinLogger())
	r.GET("/api/projects/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/abc?x=1", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "/api/projects/:id", entry["route"])
	assert.Equal(t, "/api/projects/abc", entry["path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.Equal(t, "integra-backend", entry["service"])
}

func TestGinRecovery_ReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	InitWithWriter("info", &buf)
	t.Cleanup(func() { Init("info") })

	r := gin.New()
	r.Use(GinRecovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestCtx_WithoutSpanHasNoTraceID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("debug", &buf)
	t.Cleanup(func() { Init("info") })

	Ctx(context.Background()).Info().Msg("hello")
	assert.NotContains(t, buf.String(), "trace_id")
}
