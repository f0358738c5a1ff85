package perf

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hotswap"

var (
	capabilitiesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "capabilities"),
		"Number of registered capabilities.",
		[]string{"instance"}, nil,
	)
	modificationsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "ledger", "modifications_total"),
		"Modification events recorded in the ledger.",
		[]string{"instance"}, nil,
	)
	learningEventsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "ledger", "entries_total"),
		"Entries recorded in the ledger.",
		[]string{"instance"}, nil,
	)
	successRateDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "success_rate"),
		"Share of feedback events reporting success.",
		[]string{"instance"}, nil,
	)
	metricDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "metric"),
		"Performance metrics set through UpdateMetric.",
		[]string{"instance", "key"}, nil,
	)
)

// Collector exports an Aggregator's summary to Prometheus.
type Collector struct {
	agg *Aggregator
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector wraps agg.
func NewCollector(agg *Aggregator) *Collector {
	return &Collector{agg: agg}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- capabilitiesDesc
	ch <- modificationsDesc
	ch <- learningEventsDesc
	ch <- successRateDesc
	ch <- metricDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.agg.Summary()
	ch <- prometheus.MustNewConstMetric(capabilitiesDesc, prometheus.GaugeValue, float64(s.CapabilityCount), s.Name)
	ch <- prometheus.MustNewConstMetric(modificationsDesc, prometheus.CounterValue, float64(s.TotalModifications), s.Name)
	ch <- prometheus.MustNewConstMetric(learningEventsDesc, prometheus.CounterValue, float64(s.LearningEventCount), s.Name)
	ch <- prometheus.MustNewConstMetric(successRateDesc, prometheus.GaugeValue, s.SuccessRate, s.Name)
	for k, v := range s.Metrics {
		ch <- prometheus.MustNewConstMetric(metricDesc, prometheus.GaugeValue, v, s.Name, k)
	}
}
