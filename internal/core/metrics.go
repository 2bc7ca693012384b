package core

import "github.com/prometheus/client_golang/prometheus"

// Metrics is a prometheus.Collector a caller can register against its own
// Registerer to observe pool behavior. It is deliberately not registered
// against the global default registry — a library should never reach for
// global state a caller cannot opt out of.
type Metrics struct {
	size     func() float64
	acquired func() float64

	scaleOuts prometheus.Counter
	scaleIns  prometheus.Counter
	refreshes prometheus.Counter

	sizeDesc     *prometheus.Desc
	acquiredDesc *prometheus.Desc
}

// NewMetrics builds a Metrics collector. sizeFn and acquiredFn are sampled
// on every Collect call, matching the pull model Prometheus clients expect.
func NewMetrics(poolName string, sizeFn, acquiredFn func() float64) *Metrics {
	labels := prometheus.Labels{"pool": poolName}
	return &Metrics{
		size:     sizeFn,
		acquired: acquiredFn,
		scaleOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "objectpool_scale_out_entries_total",
			Help:        "Entries created by auto-scale batch scale-out.",
			ConstLabels: labels,
		}),
		scaleIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "objectpool_scale_in_entries_total",
			Help:        "Entries removed by auto-scale idle scale-in.",
			ConstLabels: labels,
		}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "objectpool_refresh_entries_total",
			Help:        "Entries replaced by TTL or stale-checker refresh.",
			ConstLabels: labels,
		}),
		sizeDesc: prometheus.NewDesc(
			"objectpool_size", "Number of entries currently resident in the pool.", nil, labels),
		acquiredDesc: prometheus.NewDesc(
			"objectpool_acquired", "Number of entries currently acquired.", nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.sizeDesc
	ch <- m.acquiredDesc
	m.scaleOuts.Describe(ch)
	m.scaleIns.Describe(ch)
	m.refreshes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(m.sizeDesc, prometheus.GaugeValue, m.size())
	ch <- prometheus.MustNewConstMetric(m.acquiredDesc, prometheus.GaugeValue, m.acquired())
	m.scaleOuts.Collect(ch)
	m.scaleIns.Collect(ch)
	m.refreshes.Collect(ch)
}

// IncScaleOut, IncScaleIn, and IncRefresh are called by the pool engine on
// the corresponding event. Safe to call on a nil *Metrics (no-op), so
// instrumentation is optional.
func (m *Metrics) IncScaleOut() {
	if m != nil {
		m.scaleOuts.Inc()
	}
}

func (m *Metrics) IncScaleIn() {
	if m != nil {
		m.scaleIns.Inc()
	}
}

func (m *Metrics) IncRefresh() {
	if m != nil {
		m.refreshes.Inc()
	}
}
