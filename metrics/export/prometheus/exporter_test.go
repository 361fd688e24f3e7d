package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/MrEthical07/tgsession"
	"github.com/MrEthical07/tgsession/structcodec"
	"github.com/MrEthical07/tgsession/tdata"
)

type fakeSource struct {
	snapshot tgsession.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() tgsession.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                       { return f.dropped }

func populated() fakeSource {
	return fakeSource{
		snapshot: tgsession.MetricsSnapshot{
			Counters: map[tgsession.MetricID]uint64{
				tgsession.MetricConvertSuccess: 7,
			},
			Histograms: map[tgsession.MetricID][]uint64{
				tgsession.MetricConvertLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	}
}

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: tgsession.MetricsSnapshot{
			Counters:   map[tgsession.MetricID]uint64{},
			Histograms: map[tgsession.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(populated())

	out := exp.Render()
	if !strings.Contains(out, "tgsession_convert_success_total 7") {
		t.Fatalf("expected convert_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "tgsession_convert_latency_seconds_bucket{le=\"0.001\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "tgsession_convert_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "tgsession_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
	if out != exp.Render() {
		t.Fatal("expected deterministic output")
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(populated())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCollectorGathers(t *testing.T) {
	reg := promclient.NewPedanticRegistry()
	reg.MustRegister(NewCollectorFromSource(populated()))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := make(map[string]float64)
	var histCount uint64
	for _, mf := range families {
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			byName[mf.GetName()] = m.GetCounter().GetValue()
		case m.GetHistogram() != nil:
			histCount = m.GetHistogram().GetSampleCount()
		}
	}

	if byName["tgsession_convert_success_total"] != 7 {
		t.Fatalf("unexpected convert_success %v", byName["tgsession_convert_success_total"])
	}
	if byName["tgsession_audit_dropped_total"] != 2 {
		t.Fatalf("unexpected audit_dropped %v", byName["tgsession_audit_dropped_total"])
	}
	if histCount != 36 {
		t.Fatalf("expected 36 latency samples, got %d", histCount)
	}
}

func TestExporterReadsConverter(t *testing.T) {
	c, err := tgsession.New().
		WithProbe(tdata.ProbeFunc(func(string) ([]tdata.Account, error) { return nil, tdata.ErrNotContainer })).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()

	s, err := structcodec.EncodeTelethon(&structcodec.Telethon{DC: 2, Address: []byte{149, 154, 167, 51}, Port: 443})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := c.Convert(context.Background(), s); err != nil {
		t.Fatalf("convert: %v", err)
	}

	out := NewPrometheusExporter(c).Render()
	if !strings.Contains(out, "tgsession_detect_telethon_total 1") || !strings.Contains(out, "tgsession_convert_success_total 1") {
		t.Fatalf("expected converter counters, got:\n%s", out)
	}
}
