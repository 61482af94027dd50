// Package otel binds swclient counters to OpenTelemetry observable
// instruments.
//
// [NewOTelExporter] registers one Int64ObservableCounter per client counter
// and one Int64ObservableGauge per latency bucket. A single callback reads
// [swclient.Client.MetricsSnapshot] on each collection. Callers own the
// MeterProvider.
package otel
