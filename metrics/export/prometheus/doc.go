// Package prometheus renders swclient metrics in Prometheus text format.
//
// [NewPrometheusExporter] reads a [swclient.Client] and exposes an
// [http.Handler] for mounting under /metrics. Counter names are prefixed
// swclient_*_total; the single histogram is swclient_request_latency_seconds.
// Nothing is registered globally.
package prometheus
