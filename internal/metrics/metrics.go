// Package metrics provides metrics collection and reporting for the MCP server.
package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Prometheus metric labels
const (
	labelTool    = "tool"
	labelStatus  = "status"
	labelBackend = "backend"
)

// Metrics tracks operational metrics with both internal counters and
// Prometheus metrics. Backend requests are single-attempt, so there is no
// retry counter.
type Metrics struct {
	// Request metrics (internal atomic counters for fast access)
	totalRequests      atomic.Uint64
	successfulRequests atomic.Uint64
	failedRequests     atomic.Uint64

	// Latency tracking
	totalLatency atomic.Int64 // microseconds
	latencyCount atomic.Uint64
	maxLatency   atomic.Int64
	minLatency   atomic.Int64

	// Rate limiting metrics
	rateLimitWaits atomic.Uint64

	// Error tracking by status code
	errorsMu       sync.RWMutex
	errorsByStatus map[int]uint64

	// Tool usage tracking
	toolsMu     sync.RWMutex
	toolUsage   map[string]uint64
	toolErrors  map[string]uint64
	toolLatency map[string]int64 // microseconds

	logger *zap.Logger

	// Prometheus metrics
	promRequestsTotal      *prometheus.CounterVec
	promRequestsSuccessful *prometheus.CounterVec
	promRequestsFailed     *prometheus.CounterVec
	promRateLimitWaits     prometheus.Counter
	promRequestLatency     *prometheus.HistogramVec
	promErrorsByStatus     *prometheus.CounterVec
	promToolCalls          *prometheus.CounterVec
	promToolErrors         *prometheus.CounterVec
	promToolLatency        *prometheus.HistogramVec
}

// New creates a new metrics tracker with Prometheus integration
func New(logger *zap.Logger) *Metrics {
	m := &Metrics{
		errorsByStatus: make(map[int]uint64),
		toolUsage:      make(map[string]uint64),
		toolErrors:     make(map[string]uint64),
		toolLatency:    make(map[string]int64),
		logger:         logger,

		// promauto auto-registers with the default registry
		promRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ucr_mcp",
			Name:      "backend_requests_total",
			Help:      "Total number of requests made to the crime data backends, labeled by backend",
		}, []string{labelBackend}),
		promRequestsSuccessful: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ucr_mcp",
			Name:      "backend_requests_successful_total",
			Help:      "Total number of successful backend requests, labeled by backend",
		}, []string{labelBackend}),
		promRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ucr_mcp",
			Name:      "backend_requests_failed_total",
			Help:      "Total number of failed backend requests, labeled by backend",
		}, []string{labelBackend}),
		promRateLimitWaits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "ucr_mcp",
			Name:      "rate_limit_waits_total",
			Help:      "Total number of outbound requests delayed by the local rate limiter",
		}),
		promRequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ucr_mcp",
			Name:      "backend_request_latency_seconds",
			Help:      "Backend request latency in seconds, labeled by backend",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		}, []string{labelBackend}),
		promErrorsByStatus: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ucr_mcp",
			Name:      "errors_by_status_total",
			Help:      "Backend errors by HTTP status code",
		}, []string{labelStatus}),

		// Tool-specific metrics, labeled by tool name
		promToolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ucr_mcp",
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls, labeled by tool name (ucr_forecast, ucr_history, ucr_compare, ucr_info)",
		}, []string{labelTool}),
		promToolErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ucr_mcp",
			Name:      "tool_errors_total",
			Help:      "Total number of tool errors, labeled by tool name",
		}, []string{labelTool}),
		promToolLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ucr_mcp",
			Name:      "tool_latency_seconds",
			Help:      "Tool execution latency in seconds, labeled by tool name",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		}, []string{labelTool}),
	}

	// Initialize min latency to max value
	m.minLatency.Store(int64(time.Hour))

	return m
}

// RecordRequest records a backend request (both internal counters and Prometheus)
func (m *Metrics) RecordRequest(backend string, success bool, latency time.Duration, statusCode int) {
	m.totalRequests.Add(1)

	m.promRequestsTotal.WithLabelValues(backend).Inc()
	m.promRequestLatency.WithLabelValues(backend).Observe(latency.Seconds())

	if success {
		m.successfulRequests.Add(1)
		m.promRequestsSuccessful.WithLabelValues(backend).Inc()
	} else {
		m.failedRequests.Add(1)
		m.promRequestsFailed.WithLabelValues(backend).Inc()
		m.recordErrorStatus(statusCode)
	}

	m.recordLatency(latency)
}

// RecordRateLimitWait records an outbound request delayed by the rate limiter
func (m *Metrics) RecordRateLimitWait() {
	m.rateLimitWaits.Add(1)
	m.promRateLimitWaits.Inc()
}

// RecordToolExecution records tool usage (both internal counters and Prometheus)
func (m *Metrics) RecordToolExecution(toolName string, success bool, latency time.Duration) {
	m.toolsMu.Lock()
	m.toolUsage[toolName]++
	if !success {
		m.toolErrors[toolName]++
	}

	// Rolling average in float64 to avoid integer overflow
	if latency > 0 && m.toolUsage[toolName] > 0 {
		currentLatency := m.toolLatency[toolName]
		count := float64(m.toolUsage[toolName])
		avgLatency := (float64(currentLatency)*(count-1) + float64(latency.Microseconds())) / count
		m.toolLatency[toolName] = int64(avgLatency)
	}
	m.toolsMu.Unlock()

	m.promToolCalls.WithLabelValues(toolName).Inc()
	m.promToolLatency.WithLabelValues(toolName).Observe(latency.Seconds())
	if !success {
		m.promToolErrors.WithLabelValues(toolName).Inc()
	}
}

func (m *Metrics) recordLatency(latency time.Duration) {
	latencyUs := latency.Microseconds()

	m.totalLatency.Add(latencyUs)
	m.latencyCount.Add(1)

	for {
		currentMax := m.maxLatency.Load()
		if latencyUs <= currentMax {
			break
		}
		if m.maxLatency.CompareAndSwap(currentMax, latencyUs) {
			break
		}
	}

	for {
		currentMin := m.minLatency.Load()
		if latencyUs >= currentMin {
			break
		}
		if m.minLatency.CompareAndSwap(currentMin, latencyUs) {
			break
		}
	}
}

func (m *Metrics) recordErrorStatus(statusCode int) {
	if statusCode == 0 {
		return
	}

	m.errorsMu.Lock()
	m.errorsByStatus[statusCode]++
	m.errorsMu.Unlock()

	m.promErrorsByStatus.WithLabelValues(fmt.Sprintf("%d", statusCode)).Inc()
}

// GetStats returns current statistics
func (m *Metrics) GetStats() Stats {
	m.errorsMu.RLock()
	errorsByStatus := make(map[int]uint64, len(m.errorsByStatus))
	for k, v := range m.errorsByStatus {
		errorsByStatus[k] = v
	}
	m.errorsMu.RUnlock()

	m.toolsMu.RLock()
	toolUsage := make(map[string]uint64, len(m.toolUsage))
	toolErrors := make(map[string]uint64, len(m.toolErrors))
	toolLatency := make(map[string]time.Duration, len(m.toolLatency))
	for k, v := range m.toolUsage {
		toolUsage[k] = v
	}
	for k, v := range m.toolErrors {
		toolErrors[k] = v
	}
	for k, v := range m.toolLatency {
		toolLatency[k] = time.Duration(v) * time.Microsecond
	}
	m.toolsMu.RUnlock()

	latencyCount := m.latencyCount.Load()
	var avgLatency time.Duration
	if latencyCount > 0 {
		avgLatencyMicros := float64(m.totalLatency.Load()) / float64(latencyCount)
		avgLatency = time.Duration(avgLatencyMicros) * time.Microsecond
	}

	return Stats{
		TotalRequests:      m.totalRequests.Load(),
		SuccessfulRequests: m.successfulRequests.Load(),
		FailedRequests:     m.failedRequests.Load(),
		RateLimitWaits:     m.rateLimitWaits.Load(),
		AverageLatency:     avgLatency,
		MaxLatency:         time.Duration(m.maxLatency.Load()) * time.Microsecond,
		MinLatency:         time.Duration(m.minLatency.Load()) * time.Microsecond,
		ErrorsByStatus:     errorsByStatus,
		ToolUsage:          toolUsage,
		ToolErrors:         toolErrors,
		ToolLatency:        toolLatency,
	}
}

// LogStats logs current statistics
func (m *Metrics) LogStats() {
	stats := m.GetStats()

	var errorRate float64
	if stats.TotalRequests > 0 {
		errorRate = float64(stats.FailedRequests) / float64(stats.TotalRequests) * 100
	}

	m.logger.Info("Operational metrics",
		zap.Uint64("total_requests", stats.TotalRequests),
		zap.Uint64("successful_requests", stats.SuccessfulRequests),
		zap.Uint64("failed_requests", stats.FailedRequests),
		zap.Float64("error_rate_pct", errorRate),
		zap.Uint64("rate_limit_waits", stats.RateLimitWaits),
		zap.Duration("avg_latency", stats.AverageLatency),
		zap.Duration("max_latency", stats.MaxLatency),
		zap.Duration("min_latency", stats.MinLatency),
		zap.Any("errors_by_status", stats.ErrorsByStatus),
		zap.Any("tool_usage", stats.ToolUsage),
	)
}

// Stats represents current metrics
type Stats struct {
	TotalRequests      uint64
	SuccessfulRequests uint64
	FailedRequests     uint64
	RateLimitWaits     uint64
	AverageLatency     time.Duration
	MaxLatency         time.Duration
	MinLatency         time.Duration
	ErrorsByStatus     map[int]uint64
	ToolUsage          map[string]uint64
	ToolErrors         map[string]uint64
	ToolLatency        map[string]time.Duration
}

// GetPrometheusRegistry returns the default Prometheus registry.
// This can be used with promhttp.HandlerFor() to serve metrics.
func GetPrometheusRegistry() *prometheus.Registry {
	return prometheus.DefaultRegisterer.(*prometheus.Registry)
}
