package metrics

import "github.com/prometheus/client_golang/prometheus"

// Source represents the behavior required to report the current shape of
// the chain.
type Source interface {
	Height() uint64
	MempoolLength() int
	Difficulty() uint16
}

// ChainCollector reports the chain height, pending pool size and difficulty
// at scrape time.
type ChainCollector struct {
	source     Source
	height     *prometheus.Desc
	pending    *prometheus.Desc
	difficulty *prometheus.Desc
}

// NewChainCollector constructs a collector reading from the specified source.
func NewChainCollector(source Source) *ChainCollector {
	return &ChainCollector{
		source: source,
		height: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "height"),
			"Index of the latest block in the chain",
			nil,
			nil,
		),
		pending: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mempool", "pending"),
			"Transactions waiting to be mined",
			nil,
			nil,
		),
		difficulty: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "difficulty"),
			"Leading zero hex digits required of a block hash",
			nil,
			nil,
		),
	}
}

// Describe implements the prometheus.Collector interface.
func (c *ChainCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.height
	ch <- c.pending
	ch <- c.difficulty
}

// Collect implements the prometheus.Collector interface.
func (c *ChainCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.height, prometheus.GaugeValue, float64(c.source.Height()))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(c.source.MempoolLength()))
	ch <- prometheus.MustNewConstMetric(c.difficulty, prometheus.GaugeValue, float64(c.source.Difficulty()))
}
