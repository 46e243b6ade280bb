package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integra_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "integra_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	applicationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integra_project_applications_total",
		Help: "Project applications by applicant role and outcome",
	}, []string{"role", "result"})

	groupsFormedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "integra_project_groups_formed_total",
		Help: "Projects whose team became complete",
	})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integra_notifications_total",
		Help: "Email notifications by kind and dispatch result",
	}, []string{"kind", "result"})

	projectsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "integra_projects",
		Help: "Projects by lifecycle status",
	}, []string{"status"})

	projectsPendingApproval = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "integra_projects_pending_approval",
		Help: "Projects awaiting admin approval",
	})

	activeParticipations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "integra_active_participations",
		Help: "Participations that have not been left, in active projects",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveApplication counts an application attempt. result is "accepted" or an error code.
func ObserveApplication(role, result string) {
	applicationsTotal.WithLabelValues(role, result).Inc()
}

func ObserveGroupFormed() {
	groupsFormedTotal.Inc()
}

func ObserveNotification(kind, result string) {
	notificationsTotal.WithLabelValues(kind, result).Inc()
}

// SetProjectGauges replaces the project gauges with a fresh snapshot.
func SetProjectGauges(byStatus map[string]int64, pending, participations int64) {
	projectsByStatus.Reset()
	for status, n := range byStatus {
		projectsByStatus.WithLabelValues(status).Set(float64(n))
	}
	projectsPendingApproval.Set(float64(pending))
	activeParticipations.Set(float64(participations))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
