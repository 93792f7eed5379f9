package mem

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes a [Tracker]'s allocator statistics as Prometheus
// metrics. Register it on a registry of your choice:
//
//	registry := prometheus.NewRegistry()
//	registry.MustRegister(mem.NewCollector(tracker))
type Collector struct {
	tracker *Tracker

	liveDesc      *prometheus.Desc
	allocatedDesc *prometheus.Desc
	releasedDesc  *prometheus.Desc
}

// NewCollector creates a collector reading from tracker.
func NewCollector(tracker *Tracker) *Collector {
	return &Collector{
		tracker: tracker,
		liveDesc: prometheus.NewDesc(
			"mem_live_objects",
			"Number of managed objects currently live.",
			nil, nil,
		),
		allocatedDesc: prometheus.NewDesc(
			"mem_allocations_total",
			"Cumulative number of tracked allocations.",
			nil, nil,
		),
		releasedDesc: prometheus.NewDesc(
			"mem_releases_total",
			"Cumulative number of final releases.",
			nil, nil,
		),
	}
}

// Describe implements [prometheus.Collector].
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.liveDesc
	ch <- c.allocatedDesc
	ch <- c.releasedDesc
}

// Collect implements [prometheus.Collector].
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.liveDesc, prometheus.GaugeValue, float64(c.tracker.LiveCount()))
	ch <- prometheus.MustNewConstMetric(c.allocatedDesc, prometheus.CounterValue, float64(c.tracker.Allocations()))
	ch <- prometheus.MustNewConstMetric(c.releasedDesc, prometheus.CounterValue, float64(c.tracker.Releases()))
}
