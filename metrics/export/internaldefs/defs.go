package internaldefs

import (
	"github.com/MrEthical07/swclient"
)

// CounterDef binds a client counter to its exported name.
type CounterDef struct {
	ID   swclient.MetricID
	Name string
	Help string
}

// HistogramDef binds a client histogram to its exported name.
type HistogramDef struct {
	ID   swclient.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: swclient.MetricRequest, Name: "swclient_requests_total", Help: "Requests issued, including ones rejected before sending."},
	{ID: swclient.MetricRequestSuccess, Name: "swclient_request_success_total", Help: "Requests answered with a valid 2xx reply."},
	{ID: swclient.MetricSessionExpired, Name: "swclient_session_expired_total", Help: "Requests blocked by the local token expiry check."},
	{ID: swclient.MetricUnauthenticated, Name: "swclient_unauthenticated_total", Help: "Requests answered with HTTP 401."},
	{ID: swclient.MetricForbidden, Name: "swclient_forbidden_total", Help: "Requests answered with HTTP 403."},
	{ID: swclient.MetricNotFound, Name: "swclient_not_found_total", Help: "Requests answered with HTTP 404."},
	{ID: swclient.MetricThrottled, Name: "swclient_throttled_total", Help: "Requests answered with HTTP 429."},
	{ID: swclient.MetricValidationFailed, Name: "swclient_validation_failed_total", Help: "Requests rejected as invalid input."},
	{ID: swclient.MetricServerFault, Name: "swclient_server_fault_total", Help: "Requests failed by the backend or a broken reply."},
	{ID: swclient.MetricNetworkUnavailable, Name: "swclient_network_unavailable_total", Help: "Requests that received no reply."},
	{ID: swclient.MetricSessionSet, Name: "swclient_session_set_total", Help: "Sessions stored."},
	{ID: swclient.MetricSessionCleared, Name: "swclient_session_cleared_total", Help: "Sessions cleared, explicitly or automatically."},
	{ID: swclient.MetricRedirect, Name: "swclient_redirect_total", Help: "Redirect signals sent to the login boundary."},
	{ID: swclient.MetricLogin, Name: "swclient_login_total", Help: "Successful logins."},
	{ID: swclient.MetricLogout, Name: "swclient_logout_total", Help: "Logouts."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: swclient.MetricRequestLatency, Name: "swclient_request_latency_seconds", Help: "Backend round-trip latency."},
}

// HistogramBounds are the upper bounds of the eight latency buckets.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix names the buckets where dots are not allowed.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
