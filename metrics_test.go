package tgsession

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricConvertSuccess)

	if got := m.Value(MetricConvertSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricDetectTelethon)
	m.Inc(MetricDetectTelethon)
	m.Inc(MetricDetectTelethon)

	if got := m.Value(MetricDetectTelethon); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricConvertSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricConvertSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		500 * time.Microsecond,
		2 * time.Millisecond,
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		time.Second,
	}

	for _, d := range observations {
		m.Observe(MetricConvertLatency, d)
	}
	// Counters have no histogram.
	m.Observe(MetricConvertSuccess, time.Millisecond)

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricConvertLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}

	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
	if _, ok := snap.Histograms[MetricConvertSuccess]; ok {
		t.Fatal("unexpected histogram for a counter id")
	}
}

func TestMetricsLatencyDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricConvertLatency, time.Millisecond)

	if _, ok := m.Snapshot().Histograms[MetricConvertLatency]; ok {
		t.Fatal("expected no histogram when latency is disabled")
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricConvertSuccess)
	m.Observe(MetricConvertLatency, time.Millisecond)
	if m.Value(MetricConvertSuccess) != 0 || m.Enabled() || m.LatencyEnabled() {
		t.Fatal("nil metrics must be inert")
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap.Counters)
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	m.Inc(MetricConvertSuccess)
	m.Inc(MetricConvertFailure)
	m.Inc(MetricConvertFailure)
	m.Observe(MetricConvertLatency, 200*time.Microsecond)

	snap := m.Snapshot()

	if snap.Counters[MetricConvertSuccess] != 1 {
		t.Fatalf("expected MetricConvertSuccess=1 got %d", snap.Counters[MetricConvertSuccess])
	}
	if snap.Counters[MetricConvertFailure] != 2 {
		t.Fatalf("expected MetricConvertFailure=2 got %d", snap.Counters[MetricConvertFailure])
	}
	if len(snap.Histograms[MetricConvertLatency]) != 8 {
		t.Fatalf("expected histogram length 8")
	}
	if snap.Histograms[MetricConvertLatency][0] != 1 {
		t.Fatalf("expected first histogram bucket=1 got %d", snap.Histograms[MetricConvertLatency][0])
	}
}

func TestConverterRecordsDetectionMetrics(t *testing.T) {
	c := newTestConverter(t)

	c.Detect(context.Background(), telethonString(t))
	c.Detect(context.Background(), telethonString(t))
	c.Detect(context.Background(), "garbage")

	snap := c.MetricsSnapshot()
	if snap.Counters[MetricDetectTelethon] != 2 {
		t.Fatalf("expected 2 telethon detections, got %d", snap.Counters[MetricDetectTelethon])
	}
	if snap.Counters[MetricDetectUnknown] != 1 {
		t.Fatalf("expected 1 unknown detection, got %d", snap.Counters[MetricDetectUnknown])
	}
}
