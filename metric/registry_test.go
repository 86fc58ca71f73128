package metric

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/binfile/errors"
)

func gathered(t *testing.T, registry *MetricsRegistry, name string) bool {
	t.Helper()
	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return true
		}
	}
	return false
}

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NotNil(t, registry.PrometheusRegistry())
	require.NotNil(t, registry.CoreMetrics())

	registry.CoreMetrics().RecordNATSStatus(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(registry.CoreMetrics().NATSConnected))
	assert.True(t, gathered(t, registry, "binfile_nats_connected"))
	assert.True(t, gathered(t, registry, "go_goroutines"))
}

func TestMetricsRegistry_Register(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter", Help: "A test counter"})
	require.NoError(t, registry.RegisterCounter("svc", "test_counter", counter))
	counter.Inc()
	assert.True(t, gathered(t, registry, "test_counter"))

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_vec", Help: "A test vec"}, []string{"k"})
	require.NoError(t, registry.RegisterCounterVec("svc", "test_vec", vec))
	vec.WithLabelValues("v").Inc()
	assert.True(t, gathered(t, registry, "test_vec"))

	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_hist", Help: "A test hist"}, []string{"k"})
	require.NoError(t, registry.RegisterHistogramVec("svc", "test_hist", hist))

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_gauge", Help: "A test gauge"})
	require.NoError(t, registry.RegisterGauge("svc", "test_gauge", gauge))
}

func TestMetricsRegistry_Duplicates(t *testing.T) {
	registry := NewMetricsRegistry()

	first := prometheus.NewCounter(prometheus.CounterOpts{Name: "dup_counter", Help: "dup"})
	require.NoError(t, registry.RegisterCounter("svc", "dup", first))

	t.Run("same key", func(t *testing.T) {
		err := registry.RegisterCounter("svc", "dup", first)
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("prometheus conflict", func(t *testing.T) {
		clash := prometheus.NewCounter(prometheus.CounterOpts{Name: "dup_counter", Help: "dup"})
		err := registry.RegisterCounter("other", "dup", clash)
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})
}

func TestMetricsRegistry_Unregister(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "gone_counter", Help: "gone"})
	require.NoError(t, registry.RegisterCounter("svc", "gone", counter))

	assert.True(t, registry.Unregister("svc", "gone"))
	assert.False(t, registry.Unregister("svc", "gone"))
	require.NoError(t, registry.RegisterCounter("svc", "gone", counter))
}

func TestCoreMetrics(t *testing.T) {
	m := NewMetrics()

	m.RecordMessageReceived("wbf", "docs.in")
	m.RecordMessageReceived("wbf", "docs.in")
	m.RecordMessagePublished("wbf", "docs.out")
	m.RecordError("wbf", "io")
	m.RecordComponentStatus("wbf", StatusRunning)
	m.RecordProcessingDuration("wbf", 3*time.Millisecond)
	m.RecordNATSReconnect()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesReceived.WithLabelValues("wbf", "docs.in")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesPublished.WithLabelValues("wbf", "docs.out")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("wbf", "io")))
	assert.Equal(t, float64(StatusRunning), testutil.ToFloat64(m.ComponentStatus.WithLabelValues("wbf")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NATSReconnects))
}

func TestServer_Handler(t *testing.T) {
	registry := NewMetricsRegistry()
	registry.CoreMetrics().RecordError("wbf", "query")
	server := NewServer(0, "", registry)

	assert.Equal(t, "http://localhost:9090/metrics", server.Address())

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `binfile_errors_total{component="wbf",type="query"} 1`))

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "OK", rec.Body.String())

	assert.NoError(t, server.Stop())
}

func TestServer_HealthCheck(t *testing.T) {
	server := NewServer(0, "", NewMetricsRegistry())

	healthy := true
	server.SetHealthCheck(func() (bool, any) {
		return healthy, map[string]string{"component": "binfile"}
	})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"component":"binfile"}`, rec.Body.String())

	healthy = false
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
