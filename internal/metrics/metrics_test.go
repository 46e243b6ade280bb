package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/projects/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/projects/:id", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/projects/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/projects/def", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/projects/:id", "200"))
	assert.Equal(t, before+2, after)
}

func TestSetProjectGauges(t *testing.T) {
	SetProjectGauges(map[string]int64{"active": 4, "closed": 1}, 2, 7)

	assert.Equal(t, float64(4), testutil.ToFloat64(projectsByStatus.WithLabelValues("active")))
	assert.Equal(t, float64(2), testutil.ToFloat64(projectsPendingApproval))
	assert.Equal(t, float64(7), testutil.ToFloat64(activeParticipations))

	SetProjectGauges(map[string]int64{"active": 1}, 0, 0)
	assert.Equal(t, 1, testutil.CollectAndCount(projectsByStatus))
}

func TestObserveApplication(t *testing.T) {
	before := testutil.ToFloat64(applicationsTotal.WithLabelValues("dev", "accepted"))
	ObserveApplication("dev", "accepted")
	assert.Equal(t, before+1, testutil.ToFloat64(applicationsTotal.WithLabelValues("dev", "accepted")))
}
