package writebinary

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/binfile/metric"
)

// writerMetrics holds Prometheus metrics for write binary file operations.
type writerMetrics struct {
	documentsTotal  *prometheus.CounterVec   // By component and outcome (written/skipped_empty/skipped_exists/error)
	errors          *prometheus.CounterVec   // By component and error_type
	bytesWritten    *prometheus.CounterVec   // By component
	processDuration *prometheus.HistogramVec // By component
}

// Collectors are registered once per registry and shared by every instance
// created against it.
var (
	metricsMu    sync.Mutex
	metricsByReg = map[*metric.MetricsRegistry]*writerMetrics{}
)

// newWriterMetrics creates and registers the metrics with the provided registry.
func newWriterMetrics(registry *metric.MetricsRegistry) (*writerMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	metricsMu.Lock()
	defer metricsMu.Unlock()

	if m, ok := metricsByReg[registry]; ok {
		return m, nil
	}

	m := &writerMetrics{
		documentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "binfile",
			Subsystem: "write_binary_file",
			Name:      "documents_total",
			Help:      "Total number of documents processed by outcome",
		}, []string{"component", "outcome"}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "binfile",
			Subsystem: "write_binary_file",
			Name:      "errors_total",
			Help:      "Total number of processing errors",
		}, []string{"component", "error_type"}),

		bytesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "binfile",
			Subsystem: "write_binary_file",
			Name:      "bytes_written_total",
			Help:      "Total number of decoded bytes written to files",
		}, []string{"component"}),

		processDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "binfile",
			Subsystem: "write_binary_file",
			Name:      "process_duration_seconds",
			Help:      "Time to extract, write and rewrite one document",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"component"}),
	}

	if err := registry.RegisterCounterVec("write_binary_file", "documents_total", m.documentsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("write_binary_file", "errors", m.errors); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("write_binary_file", "bytes_written", m.bytesWritten); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("write_binary_file", "process_duration", m.processDuration); err != nil {
		return nil, err
	}

	metricsByReg[registry] = m
	return m, nil
}

// recordOutcome records a completed document.
func (m *writerMetrics) recordOutcome(componentName string, outcome Outcome, duration time.Duration) {
	if m == nil {
		return
	}

	m.documentsTotal.WithLabelValues(componentName, outcome.Kind.String()).Inc()
	if outcome.Kind == Written {
		m.bytesWritten.WithLabelValues(componentName).Add(float64(outcome.Bytes))
	}
	m.processDuration.WithLabelValues(componentName).Observe(duration.Seconds())
}

// recordError records a failed document.
func (m *writerMetrics) recordError(componentName, errorType string) {
	if m == nil {
		return
	}

	m.errors.WithLabelValues(componentName, errorType).Inc()
	m.documentsTotal.WithLabelValues(componentName, "error").Inc()
}

// recordPublishError records a failed publish of an already processed document.
func (m *writerMetrics) recordPublishError(componentName string) {
	if m == nil {
		return
	}

	m.errors.WithLabelValues(componentName, "publish").Inc()
}
