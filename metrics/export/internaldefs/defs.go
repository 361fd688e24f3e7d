package internaldefs

import (
	"github.com/MrEthical07/tgsession"
)

// CounterDef names one converter counter.
type CounterDef struct {
	ID   tgsession.MetricID
	Name string
	Help string
}

// HistogramDef names one converter histogram.
type HistogramDef struct {
	ID   tgsession.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exporters publish for dropped audit events.
const (
	AuditDroppedName = "tgsession_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

var CounterDefs = []CounterDef{
	{ID: tgsession.MetricDetectTData, Name: "tgsession_detect_tdata_total", Help: "Inputs detected as Telegram Desktop tdata containers."},
	{ID: tgsession.MetricDetectTelethon, Name: "tgsession_detect_telethon_total", Help: "Inputs detected as Telethon sessions."},
	{ID: tgsession.MetricDetectPyrogram, Name: "tgsession_detect_pyrogram_total", Help: "Inputs detected as Pyrogram sessions."},
	{ID: tgsession.MetricDetectUnknown, Name: "tgsession_detect_unknown_total", Help: "Inputs no known format matched."},
	{ID: tgsession.MetricAttemptPanic, Name: "tgsession_detect_attempt_panic_total", Help: "Detection attempts that panicked and were recovered."},
	{ID: tgsession.MetricConvertSuccess, Name: "tgsession_convert_success_total", Help: "Conversions that produced canonical bytes."},
	{ID: tgsession.MetricConvertFailure, Name: "tgsession_convert_failure_total", Help: "Conversions that failed."},
	{ID: tgsession.MetricDecodeFailure, Name: "tgsession_decode_failure_total", Help: "String sessions rejected by the struct codec."},
	{ID: tgsession.MetricStoreRejected, Name: "tgsession_store_rejected_total", Help: "SQLite files rejected by schema validation."},
	{ID: tgsession.MetricUnknownDatacenter, Name: "tgsession_unknown_datacenter_total", Help: "Datacenter ids without a known endpoint."},
	{ID: tgsession.MetricSinkSaved, Name: "tgsession_sink_saved_total", Help: "Canonical sessions written to the Redis sink."},
	{ID: tgsession.MetricSinkFailure, Name: "tgsession_sink_failure_total", Help: "Failed Redis sink writes."},
}

var HistogramDefs = []HistogramDef{
	{ID: tgsession.MetricConvertLatency, Name: "tgsession_convert_latency_seconds", Help: "Conversion latency histogram."},
}

// HistogramBounds are the upper bounds of the eight latency buckets in
// seconds, as Prometheus labels.
var HistogramBounds = []string{
	"0.001",
	"0.002",
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"+Inf",
}

// HistogramUpperBounds are HistogramBounds without +Inf, as numbers.
var HistogramUpperBounds = []float64{0.001, 0.002, 0.005, 0.01, 0.025, 0.05, 0.1}

// HistogramBoundSuffix turns each bound into a metric name suffix for
// exporters without native histogram labels.
var HistogramBoundSuffix = []string{
	"0_001",
	"0_002",
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array, padding with
// zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
