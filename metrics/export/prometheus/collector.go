package prometheus

import (
	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/MrEthical07/tgsession"
	"github.com/MrEthical07/tgsession/metrics/export/internaldefs"
)

// Collector exposes the same series as PrometheusExporter through a
// client_golang registry.
type Collector struct {
	source     metricsSource
	counters   []*promclient.Desc
	histograms []*promclient.Desc
	dropped    *promclient.Desc
}

var _ promclient.Collector = (*Collector)(nil)

// NewCollector returns a Collector reading from c.
func NewCollector(c *tgsession.Converter) *Collector {
	return NewCollectorFromSource(c)
}

// NewCollectorFromSource returns a Collector reading from source.
func NewCollectorFromSource(source metricsSource) *Collector {
	col := &Collector{
		source:  source,
		dropped: promclient.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		col.counters = append(col.counters, promclient.NewDesc(def.Name, def.Help, nil, nil))
	}
	for _, def := range internaldefs.HistogramDefs {
		col.histograms = append(col.histograms, promclient.NewDesc(def.Name, def.Help, nil, nil))
	}
	return col
}

func (c *Collector) Describe(ch chan<- *promclient.Desc) {
	for _, d := range c.counters {
		ch <- d
	}
	for _, d := range c.histograms {
		ch <- d
	}
	ch <- c.dropped
}

func (c *Collector) Collect(ch chan<- promclient.Metric) {
	if c.source == nil {
		return
	}
	snapshot := c.source.MetricsSnapshot()

	for i, def := range internaldefs.CounterDefs {
		ch <- promclient.MustNewConstMetric(c.counters[i], promclient.CounterValue, float64(snapshot.Counters[def.ID]))
	}

	for i, def := range internaldefs.HistogramDefs {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for j, bound := range internaldefs.HistogramUpperBounds {
			buckets[bound] = cumulative[j]
		}
		ch <- promclient.MustNewConstHistogram(c.histograms[i], cumulative[len(cumulative)-1], 0, buckets)
	}

	ch <- promclient.MustNewConstMetric(c.dropped, promclient.CounterValue, float64(c.source.AuditDropped()))
}
