package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/vortex07x/steamsurf/internal/model"
)

// Metrics holds all Prometheus collectors for the SteamSurf API. Collectors
// are nil until InitMetrics runs.
var Metrics = struct {
	InteractionsTotal *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	DBPoolActive      prometheus.GaugeFunc
	DBPoolIdle        prometheus.GaugeFunc
	RequestsInFlight  prometheus.Gauge
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
	ViewsCleaned      prometheus.Counter
}{}

// InitMetrics registers all Prometheus metrics on reg. Call once at startup.
func InitMetrics(reg prometheus.Registerer, pool *pgxpool.Pool) {
	Metrics.InteractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steamsurf_interactions_total",
			Help: "Interactions recorded, by type.",
		},
		[]string{"type"},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "steamsurf_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "steamsurf_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steamsurf_cache_hits_total",
			Help: "Redis cache hits, by key.",
		},
		[]string{"key"},
	)

	Metrics.CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steamsurf_cache_misses_total",
			Help: "Redis cache misses, by key.",
		},
		[]string{"key"},
	)

	Metrics.ViewsCleaned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "steamsurf_view_cleanup_deleted_total",
			Help: "View events removed by retention cleanup.",
		},
	)

	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "steamsurf_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "steamsurf_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		reg.MustRegister(Metrics.DBPoolActive, Metrics.DBPoolIdle)
	}

	reg.MustRegister(
		Metrics.InteractionsTotal,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.ViewsCleaned,
	)
}

func countInteraction(t model.InteractionType) {
	if Metrics.InteractionsTotal != nil {
		Metrics.InteractionsTotal.WithLabelValues(string(t)).Inc()
	}
}

// CountCleanup records rows removed by a retention sweep.
func CountCleanup(n int64) {
	if Metrics.ViewsCleaned != nil {
		Metrics.ViewsCleaned.Add(float64(n))
	}
}

// CacheMetrics feeds cache lookups into the hit and miss counters.
type CacheMetrics struct{}

func (CacheMetrics) CacheHit(key string) {
	if Metrics.CacheHits != nil {
		Metrics.CacheHits.WithLabelValues(key).Inc()
	}
}

func (CacheMetrics) CacheMiss(key string) {
	if Metrics.CacheMisses != nil {
		Metrics.CacheMisses.WithLabelValues(key).Inc()
	}
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Path() == "/metrics" || Metrics.RequestDuration == nil {
			return c.Next()
		}

		// Fiber's path and method are views into a reusable buffer; copy them
		// before the handler runs.
		endpoint := sanitizeEndpoint(string([]byte(c.Path())))
		method := string([]byte(c.Method()))

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint replaces id segments so label cardinality stays bounded.
func sanitizeEndpoint(path string) string {
	if strings.HasPrefix(path, "/uploads/") {
		return "/uploads/*"
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if _, err := uuid.Parse(p); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler(g prometheus.Gatherer) fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
