package swclient

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one in-process counter.
type MetricID uint16

const (
	// MetricRequest counts every Request call, including short-circuited ones.
	MetricRequest MetricID = iota
	// MetricRequestSuccess counts 2xx responses that honored the JSON contract.
	MetricRequestSuccess
	// MetricSessionExpired counts calls rejected by the local expiry check.
	MetricSessionExpired
	// MetricUnauthenticated counts HTTP 401 responses.
	MetricUnauthenticated
	// MetricForbidden counts HTTP 403 responses.
	MetricForbidden
	// MetricNotFound counts HTTP 404 responses.
	MetricNotFound
	// MetricThrottled counts HTTP 429 responses.
	MetricThrottled
	// MetricValidationFailed counts 422 and other unclassified 4xx responses.
	MetricValidationFailed
	// MetricServerFault counts 5xx and contract-breaking responses.
	MetricServerFault
	// MetricNetworkUnavailable counts calls that received no response.
	MetricNetworkUnavailable
	// MetricSessionSet counts successful SetSession calls.
	MetricSessionSet
	// MetricSessionCleared counts ClearSession calls, explicit or automatic.
	MetricSessionCleared
	// MetricRedirect counts redirect signals.
	MetricRedirect
	// MetricLogin counts successful logins.
	MetricLogin
	// MetricLogout counts logouts.
	MetricLogout
	// MetricRequestLatency is the round-trip latency histogram.
	MetricRequestLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and one latency histogram.
//
// A nil or disabled Metrics silently ignores updates.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns Metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the histogram id. Only MetricRequestLatency has a
// histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricRequestLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricRequestLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRequestLatency].buckets[i])
		}
		s.Histograms[MetricRequestLatency] = buckets
	}

	return s
}

func kindMetric(k ErrorKind) MetricID {
	switch k {
	case KindSessionExpired:
		return MetricSessionExpired
	case KindUnauthenticated:
		return MetricUnauthenticated
	case KindForbidden:
		return MetricForbidden
	case KindNotFound:
		return MetricNotFound
	case KindThrottled:
		return MetricThrottled
	case KindValidationFailed:
		return MetricValidationFailed
	case KindNetworkUnavailable:
		return MetricNetworkUnavailable
	default:
		return MetricServerFault
	}
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 50:
		return 0
	case ms <= 100:
		return 1
	case ms <= 250:
		return 2
	case ms <= 500:
		return 3
	case ms <= 1000:
		return 4
	case ms <= 2500:
		return 5
	case ms <= 5000:
		return 6
	default:
		return 7
	}
}
