package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "supercivilian",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "supercivilian",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "supercivilian",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Upstream API metrics, labelled by upstream ("arcgis", "google") and
	// outcome ("ok", "not_found", "error").
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "supercivilian",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Total requests sent to third-party APIs",
	}, []string{"upstream", "operation", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "supercivilian",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of third-party API calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"upstream", "operation"})

	// UpstreamFailOpen counts listings answered with an empty result because
	// the shelter service failed.
	UpstreamFailOpen = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "supercivilian",
		Subsystem: "upstream",
		Name:      "fail_open_total",
		Help:      "Shelter listings served empty after an upstream failure",
	})

	SharedFetches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "supercivilian",
		Subsystem: "cache",
		Name:      "shared_fetches_total",
		Help:      "Cache misses that joined an in-flight upstream fetch",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "supercivilian",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "supercivilian",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "supercivilian",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	OccupancyUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "supercivilian",
		Subsystem: "occupancy",
		Name:      "updates_total",
		Help:      "Total accepted shelter occupancy updates",
	})

	WarmupPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "supercivilian",
		Subsystem: "warmup",
		Name:      "points_total",
		Help:      "Cache warm-up points processed",
	}, []string{"outcome"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "supercivilian",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "supercivilian",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "supercivilian",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// ObserveUpstream records one third-party call that started at start.
func ObserveUpstream(upstream, operation, outcome string, start time.Time) {
	UpstreamRequests.WithLabelValues(upstream, operation, outcome).Inc()
	UpstreamDuration.WithLabelValues(upstream, operation).Observe(time.Since(start).Seconds())
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics updates database pool gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	if s == nil {
		return
	}
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}
