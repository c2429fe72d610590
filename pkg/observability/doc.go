// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, observability.FormatJSON, os.Stderr)
//	logger.WithField("pass", "cycles").Warn("cycle found")
//
// Context-aware logging:
//
//	ctx = observability.WithRunID(ctx, runID)
//	observability.FromContext(ctx).Info("verification started")
//
// # Prometheus Metrics
//
// Initialize metrics and dump them for the node-exporter textfile collector:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.CountDiagnostic("error", "ui_cycles")
//	_ = observability.WriteTextfile("/var/lib/node_exporter/modverify.prom", registry)
//
// # OpenTelemetry
//
// Initialize tracing:
//
//	tp, err := observability.InitTracing(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "modverify",
//	}, logger)
//	defer observability.ShutdownTracing(ctx, tp, logger)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/analyzer: Emits pass spans, metrics and log lines
package observability
