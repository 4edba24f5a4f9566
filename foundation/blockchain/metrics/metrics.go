// Package metrics provides the prometheus instrumentation for mining and
// validating the blockchain.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "powchain"

// Metrics holds the instruments updated while the chain is used. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	blocksMined    prometheus.Counter
	miningFailures *prometheus.CounterVec
	miningDuration prometheus.Histogram
	txSubmitted    prometheus.Counter
	validationRuns *prometheus.CounterVec
	rewardsMinted  prometheus.Counter
}

// New constructs the instruments and registers them with the specified
// registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := Metrics{
		blocksMined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "blocks_total",
			Help:      "Number of blocks mined and appended to the chain.",
		}),
		miningFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "failures_total",
			Help:      "Number of mining operations that did not produce a block.",
		}, []string{"reason"}),
		miningDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "duration_seconds",
			Help:      "Time spent searching for a nonce.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		txSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mempool",
			Name:      "submitted_total",
			Help:      "Number of transactions submitted to the pending pool.",
		}),
		validationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "runs_total",
			Help:      "Number of chain validations by result.",
		}, []string{"result"}),
		rewardsMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "rewards_minted_total",
			Help:      "Sum of the rewards minted by mined blocks.",
		}),
	}

	collectors := []prometheus.Collector{
		m.blocksMined,
		m.miningFailures,
		m.miningDuration,
		m.txSubmitted,
		m.validationRuns,
		m.rewardsMinted,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &m, nil
}

// BlockMined records a successful mining operation.
func (m *Metrics) BlockMined(duration time.Duration, reward float64) {
	if m == nil {
		return
	}

	m.blocksMined.Inc()
	m.miningDuration.Observe(duration.Seconds())
	if reward > 0 {
		m.rewardsMinted.Add(reward)
	}
}

// MiningFailed records a mining operation that ended without a block.
func (m *Metrics) MiningFailed(duration time.Duration, reason string) {
	if m == nil {
		return
	}

	m.miningFailures.WithLabelValues(reason).Inc()
	m.miningDuration.Observe(duration.Seconds())
}

// TxSubmitted records a transaction added to the pending pool.
func (m *Metrics) TxSubmitted() {
	if m == nil {
		return
	}

	m.txSubmitted.Inc()
}

// Validated records the outcome of a chain validation.
func (m *Metrics) Validated(err error) {
	if m == nil {
		return
	}

	result := "valid"
	if err != nil {
		result = "invalid"
	}

	m.validationRuns.WithLabelValues(result).Inc()
}
