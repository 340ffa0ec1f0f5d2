package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/TrevorS/fuzzydbscan"
)

const namespace = "fuzzydbscan"

type metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    prometheus.Histogram
	points      prometheus.Histogram
	assignments *prometheus.CounterVec
}

// newMetrics registers collectors on a fresh registry, so several servers
// can coexist in one process.
func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cluster_duration_seconds",
				Help:      "Time spent clustering one request",
				Buckets:   prometheus.DefBuckets,
			},
		),
		points: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cluster_points",
				Help:      "Number of points per clustering request",
				Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
			},
		),
		assignments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assignments_total",
				Help:      "Assignment records produced, by category",
			},
			[]string{"category"},
		),
	}
	m.registry.MustRegister(m.requests, m.duration, m.points, m.assignments)
	return m
}

func (m *metrics) observeRun(res *fuzzydbscan.Result, elapsed time.Duration) {
	m.duration.Observe(elapsed.Seconds())
	m.points.Observe(float64(res.NumPoints()))
	for _, a := range res.Assignments {
		m.assignments.WithLabelValues(a.Category.String()).Inc()
	}
}

// requestLogger logs one line per request and counts it by route pattern.
func requestLogger(logger *zap.Logger, m *metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
