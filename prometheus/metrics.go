package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"fieldsales-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldsales_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Authentication failures by kind
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldsales_auth_errors_total",
			Help: "Total number of rejected credentials",
		},
		[]string{"type"}, // missing header, malformed header, expired, invalid token
	)

	// Status transitions applied by the lifecycle engine
	TransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldsales_status_transitions_total",
			Help: "Total number of records moved to a new status",
		},
		[]string{"entity", "status"},
	)

	// Attendance events
	PunchCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldsales_punch_events_total",
			Help: "Total number of punch-in and punch-out events",
		},
		[]string{"event"}, // punchin, punchout, rejected
	)

	// Object store uploads
	UploadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldsales_uploads_total",
			Help: "Total number of photo uploads to the object store",
		},
		[]string{"result"}, // success, failure
	)

	// Records created per entity
	RecordsCreatedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldsales_records_created_total",
			Help: "Total number of business rows created",
		},
		[]string{"entity"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldsales_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldsales_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fieldsales_info",
			Help: "Information about the field sales service",
		},
		[]string{"version", "service", "environment"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(TransitionCounter)
	prometheus.MustRegister(PunchCounter)
	prometheus.MustRegister(UploadCounter)
	prometheus.MustRegister(RecordsCreatedCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)
}

// InitMetrics publishes the build info of the running service
func InitMetrics(cfg *config.Config) {
	InfoGauge.With(prometheus.Labels{
		"version":     "1.0.0",
		"service":     cfg.ServiceName,
		"environment": cfg.Server.Env,
	}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records a rejected credential by kind
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordTransition records rows moved to a status
func RecordTransition(entity, status string, count int) {
	TransitionCounter.With(prometheus.Labels{"entity": entity, "status": status}).Add(float64(count))
}

// RecordPunch records an attendance event
func RecordPunch(event string) {
	PunchCounter.With(prometheus.Labels{"event": event}).Inc()
}

// RecordUpload records the outcome of a photo upload
func RecordUpload(result string) {
	UploadCounter.With(prometheus.Labels{"result": result}).Inc()
}

// RecordCreated records rows created for an entity
func RecordCreated(entity string, count int) {
	RecordsCreatedCounter.With(prometheus.Labels{"entity": entity}).Add(float64(count))
}
