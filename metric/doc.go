// Package metric provides Prometheus-based metrics collection and the HTTP server
// that exposes them.
//
// A MetricsRegistry owns a private prometheus.Registry with the core platform
// metrics (component status, messages received and published, processing
// duration, errors, NATS connectivity) plus Go runtime collectors. Components
// register their own collectors under a service name:
//
//	registry := metric.NewMetricsRegistry()
//	docs := prometheus.NewCounterVec(prometheus.CounterOpts{
//		Namespace: "binfile",
//		Name:      "documents_total",
//		Help:      "Documents processed",
//	}, []string{"component", "outcome"})
//	if err := registry.RegisterCounterVec("write_binary_file", "documents", docs); err != nil {
//		return err
//	}
//
// Registering the same service/metric pair twice fails with an invalid error.
//
// Serving:
//
//	server := metric.NewServer(9090, "/metrics", registry)
//	go func() {
//		if err := server.Start(); err != nil {
//			logger.Error("metrics server failed", "error", err)
//		}
//	}()
//	defer server.Stop()
//
// Start returns nil once Stop closes the server.
package metric
