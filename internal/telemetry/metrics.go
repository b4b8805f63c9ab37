// Package telemetry provides application-level observability for the OSCA
// information management system.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<OSCA_TELEMETRY_PROMETHEUS_PORT>/metrics
//
// Default port: 9090.  The endpoint returns data in the Prometheus text exposition
// format and is intended to be scraped by a Prometheus server every 15–60 seconds.
// It is NOT served by the Gin router.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - SMS dispatch counters, by delivery outcome
//   - Soft-delete purge sweep counters
//   - Database connection pool gauge (polled every 30 s)
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /api/senior-citizens/get/:id)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as record IDs.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
//
// HTTPRequestsTotal is a CounterVec with labels {method, path, status}.
// The path label holds the Gin route template, NOT the raw URL.
//
// HTTPRequestDuration is a HistogramVec with labels {method, path} and exponential-ish
// buckets from 5 ms to 30 s.  Use histogram_quantile to compute latency percentiles.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// SMS dispatch metrics — recorded by the outbound SMS client.
//
// SMSMessagesTotal is a CounterVec with label {status} ("sent" or "failed"),
// incremented once per recipient outcome.  An alert on
// rate(sms_messages_total{status="failed"}[1h]) > 0 catches gateway outages early.
//
// SMSGatewayDuration is a Histogram observing one gateway submission round trip.
var (
	SMSMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_messages_total",
			Help: "Total number of SMS recipient outcomes recorded, by delivery status.",
		},
		[]string{"status"},
	)

	SMSGatewayDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sms_gateway_duration_seconds",
			Help:    "Duration of a single SMS gateway submission.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// CitizensPurgedTotal is a plain Counter incremented once per citizen record
// permanently removed by the retention sweep background job.
//
// Example PromQL queries:
//   - Purge throughput:  increase(citizens_purged_total[24h])
var CitizensPurgedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "citizens_purged_total",
		Help: "Total number of soft-deleted citizen records permanently removed by the retention sweep.",
	},
)

// OTPVerificationsTotal is a CounterVec with label {result} ("valid" or "invalid"),
// incremented on every OTP verification attempt.  A spike in rejections is a
// brute-force signal worth alerting on.
var OTPVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "otp_verifications_total",
		Help: "Total number of OTP verification attempts, by result.",
	},
	[]string{"result"},
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool.  It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB connection
// pool statistics every 30 seconds and updates the DBOpenConnections gauge.
// The goroutine exits cleanly when the database becomes unreachable (db.Ping fails),
// which happens automatically when the application shuts down and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in main.go:
//
//	telemetry.StartDBStatsCollector(database)
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
