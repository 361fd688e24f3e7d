package tgsession

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one converter counter or histogram.
type MetricID uint16

const (
	// MetricDetectTData counts inputs detected as tdata containers.
	MetricDetectTData MetricID = iota
	// MetricDetectTelethon counts inputs detected as Telethon sessions.
	MetricDetectTelethon
	// MetricDetectPyrogram counts inputs detected as Pyrogram sessions.
	MetricDetectPyrogram
	// MetricDetectUnknown counts inputs no format matched.
	MetricDetectUnknown
	// MetricAttemptPanic counts detection attempts that panicked.
	MetricAttemptPanic
	// MetricConvertSuccess counts conversions that produced canonical bytes.
	MetricConvertSuccess
	// MetricConvertFailure counts conversions that returned an error.
	MetricConvertFailure
	// MetricDecodeFailure counts string sessions rejected by the struct codec.
	MetricDecodeFailure
	// MetricStoreRejected counts SQLite files rejected by schema validation.
	MetricStoreRejected
	// MetricUnknownDatacenter counts dc ids the resolver had no endpoint for.
	MetricUnknownDatacenter
	// MetricSinkSaved counts canonical sessions written to the Redis sink.
	MetricSinkSaved
	// MetricSinkFailure counts failed Redis sink writes.
	MetricSinkFailure
	// MetricConvertLatency is the conversion latency histogram.
	MetricConvertLatency
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

// Metrics is a fixed set of lock-free counters plus one latency histogram.
// A nil or disabled Metrics ignores every update.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
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

// Observe records d in the histogram id. Only MetricConvertLatency has one.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricConvertLatency {
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

// Snapshot copies every counter, and the latency buckets when enabled.
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
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricConvertLatency].buckets[i])
		}
		s.Histograms[MetricConvertLatency] = buckets
	}

	return s
}

// Upper bounds: 1, 2, 5, 10, 25, 50, 100 ms, then +Inf.
func bucketIndex(d time.Duration) int {
	us := d.Microseconds()

	switch {
	case us <= 1000:
		return 0
	case us <= 2000:
		return 1
	case us <= 5000:
		return 2
	case us <= 10000:
		return 3
	case us <= 25000:
		return 4
	case us <= 50000:
		return 5
	case us <= 100000:
		return 6
	default:
		return 7
	}
}
