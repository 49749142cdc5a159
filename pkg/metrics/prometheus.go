// Package metrics provides Prometheus metrics for the Aila risk service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Assessment metrics - the business core
	assessments          *prometheus.CounterVec
	assessmentErrors     *prometheus.CounterVec
	adjustmentMagnitude  prometheus.Histogram
	riskFloorActivations *prometheus.CounterVec
	skinGrades           *prometheus.CounterVec

	// Model metrics
	modelLoaded           *prometheus.GaugeVec
	modelInferenceLatency *prometheus.HistogramVec
	modelUnavailable      *prometheus.CounterVec

	// Assistant metrics
	chatRequests        prometheus.Counter
	chatFallbacks       prometheus.Counter
	chatErrors          prometheus.Counter
	activeConversations prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "aila",
		subsystem:        "risk",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics registers all metrics on the configured registry.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.assessments = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "assessments_total",
			Help:      "Total number of risk assessments by domain and final decision",
		},
		[]string{"domain", "decision"},
	)

	m.assessmentErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "assessment_errors_total",
			Help:      "Total number of failed risk assessments by domain",
		},
		[]string{"domain"},
	)

	m.adjustmentMagnitude = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "adjustment_magnitude",
		Help:      "Absolute difference between base and adjusted probability",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.7},
	})

	m.riskFloorActivations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "risk_floor_activations_total",
			Help:      "Total number of high-risk probability floor activations by domain",
		},
		[]string{"domain"},
	)

	m.skinGrades = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "skin_grades_total",
			Help:      "Total number of skin lesion gradings by risk tier",
		},
		[]string{"tier"},
	)

	m.modelLoaded = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "model_loaded",
			Help:      "Whether a model handle is loaded (1) or not (0) by domain",
		},
		[]string{"domain"},
	)

	m.modelInferenceLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "model_inference_latency_milliseconds",
			Help:      "Model inference latency in milliseconds by domain",
			Buckets:   m.histogramBuckets,
		},
		[]string{"domain"},
	)

	m.modelUnavailable = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "model_unavailable_total",
			Help:      "Total number of requests rejected because a model was unavailable",
		},
		[]string{"domain"},
	)

	m.chatRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chat_requests_total",
		Help:      "Total number of assistant chat requests",
	})

	m.chatFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chat_fallbacks_total",
		Help:      "Total number of chat responses served from the canned fallback set",
	})

	m.chatErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chat_errors_total",
		Help:      "Total number of upstream assistant API errors",
	})

	m.activeConversations = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_conversations",
		Help:      "Current number of conversations held in the history store",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and error type",
		},
		[]string{"component", "error_type"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint and method",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordAssessment counts a completed risk assessment.
func RecordAssessment(domain, decision string) {
	globalManager.assessments.WithLabelValues(domain, decision).Inc()
}

// RecordAssessmentError counts a failed risk assessment.
func RecordAssessmentError(domain string) {
	globalManager.assessmentErrors.WithLabelValues(domain).Inc()
}

// RecordAdjustmentMagnitude observes |adjusted - base| for an assessment.
func RecordAdjustmentMagnitude(delta float64) {
	if delta < 0 {
		delta = -delta
	}
	globalManager.adjustmentMagnitude.Observe(delta)
}

// RecordRiskFloorActivation counts a high-risk probability floor firing.
func RecordRiskFloorActivation(domain string) {
	globalManager.riskFloorActivations.WithLabelValues(domain).Inc()
}

// RecordSkinGrade counts a skin lesion grading by tier.
func RecordSkinGrade(tier string) {
	globalManager.skinGrades.WithLabelValues(tier).Inc()
}

// UpdateModelLoaded flips the loaded gauge for a model domain.
func UpdateModelLoaded(domain string, loaded bool) {
	v := 0.0
	if loaded {
		v = 1.0
	}
	globalManager.modelLoaded.WithLabelValues(domain).Set(v)
}

// RecordModelInferenceLatency observes inference latency in milliseconds.
func RecordModelInferenceLatency(domain string, latencyMs float64) {
	globalManager.modelInferenceLatency.WithLabelValues(domain).Observe(latencyMs)
}

// RecordModelUnavailable counts a request rejected for a missing model.
func RecordModelUnavailable(domain string) {
	globalManager.modelUnavailable.WithLabelValues(domain).Inc()
}

// RecordChatRequest counts an assistant chat request.
func RecordChatRequest() {
	globalManager.chatRequests.Inc()
}

// RecordChatFallback counts a canned fallback chat response.
func RecordChatFallback() {
	globalManager.chatFallbacks.Inc()
}

// RecordChatError counts an upstream assistant API error.
func RecordChatError() {
	globalManager.chatErrors.Inc()
}

// UpdateActiveConversations sets the conversation count gauge.
func UpdateActiveConversations(count int) {
	globalManager.activeConversations.Set(float64(count))
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint counts an error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry metrics are served from.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
