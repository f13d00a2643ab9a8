package monitoring

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsService interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordLedgerOperation(operation, status string, duration time.Duration)
	RecordExternalServiceCall(service, operation string, success bool, duration time.Duration)
	RecordRevaluationRun(duration time.Duration, err error)
}

type prometheusMetrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	ledgerOperationsTotal   *prometheus.CounterVec
	ledgerOperationDuration *prometheus.HistogramVec

	externalServiceCallsTotal *prometheus.CounterVec
	externalServiceDuration   *prometheus.HistogramVec

	revaluationRunsTotal  *prometheus.CounterVec
	revaluationDuration   prometheus.Histogram
}

func NewPrometheusMetrics() MetricsService {
	m := &prometheusMetrics{}
	m.initMetrics()
	return m
}

func (m *prometheusMetrics) initMetrics() {
	m.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brokerage_api_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	m.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brokerage_api_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	m.ledgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brokerage_api_ledger_operations_total",
			Help: "Total number of ledger operations",
		},
		[]string{"operation", "status"},
	)

	m.ledgerOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brokerage_api_ledger_operation_duration_seconds",
			Help:    "Ledger operation duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"operation"},
	)

	m.externalServiceCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brokerage_api_external_service_calls_total",
			Help: "Total number of external service calls",
		},
		[]string{"service", "operation", "success"},
	)

	m.externalServiceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brokerage_api_external_service_duration_seconds",
			Help:    "External service call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 5.0, 10.0},
		},
		[]string{"service", "operation"},
	)

	m.revaluationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brokerage_api_revaluation_runs_total",
			Help: "Total number of portfolio revaluation runs",
		},
		[]string{"status"},
	)

	m.revaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "brokerage_api_revaluation_duration_seconds",
			Help:    "Portfolio revaluation run duration in seconds",
			Buckets: []float64{0.5, 1.0, 5.0, 15.0, 60.0},
		},
	)
}

func (m *prometheusMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, fmt.Sprintf("%d", statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordLedgerOperation(operation, status string, duration time.Duration) {
	m.ledgerOperationsTotal.WithLabelValues(operation, status).Inc()
	m.ledgerOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordExternalServiceCall(service, operation string, success bool, duration time.Duration) {
	successStr := "false"
	if success {
		successStr = "true"
	}
	m.externalServiceCallsTotal.WithLabelValues(service, operation, successStr).Inc()
	m.externalServiceDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordRevaluationRun(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.revaluationRunsTotal.WithLabelValues(status).Inc()
	m.revaluationDuration.Observe(duration.Seconds())
}

// NoopMetrics is used in tests where metric output is irrelevant
type NoopMetrics struct{}

func (NoopMetrics) RecordHTTPRequest(string, string, int, time.Duration)          {}
func (NoopMetrics) RecordLedgerOperation(string, string, time.Duration)           {}
func (NoopMetrics) RecordExternalServiceCall(string, string, bool, time.Duration) {}
func (NoopMetrics) RecordRevaluationRun(time.Duration, error)                     {}
