package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry - коллекторы приложения, отдаются на /metrics
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "caterconnect",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caterconnect",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "caterconnect",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	applicationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caterconnect",
			Subsystem: "applications",
			Name:      "transitions_total",
			Help:      "Application status writes by target status.",
		},
		[]string{"status"},
	)

	ratingsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "caterconnect",
			Subsystem: "ratings",
			Name:      "submitted_total",
			Help:      "Ratings stored.",
		},
	)

	referralRewards = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "caterconnect",
			Subsystem: "referrals",
			Name:      "rewards_total",
			Help:      "Referrers that unlocked a PRO month.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caterconnect",
			Subsystem: "notifications",
			Name:      "total",
			Help:      "Notification inserts by result.",
		},
		[]string{"result"},
	)

	workerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "caterconnect",
			Subsystem: "workers",
			Name:      "runs_total",
			Help:      "Background worker runs.",
		},
		[]string{"worker", "success"},
	)

	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "caterconnect",
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Open websocket connections.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		applicationTransitions,
		ratingsSubmitted,
		referralRewards,
		notifications,
		workerRuns,
		wsConnections,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler отдает метрики в формате Prometheus
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware считает запросы по шаблону маршрута, а не по сырому пути
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		httpInFlight.Inc()
		start := time.Now()
		c.Next()
		httpInFlight.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordTransition(status string) {
	applicationTransitions.WithLabelValues(status).Inc()
}

func RecordRating() {
	ratingsSubmitted.Inc()
}

func RecordReferralReward() {
	referralRewards.Inc()
}

// RecordNotification: result = "stored" | "failed"
func RecordNotification(result string) {
	notifications.WithLabelValues(result).Inc()
}

func RecordWorkerRun(worker string, err error) {
	workerRuns.WithLabelValues(worker, strconv.FormatBool(err == nil)).Inc()
}

func WSConnected() {
	wsConnections.Inc()
}

func WSDisconnected() {
	wsConnections.Dec()
}
