package application

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "coinselect"

	resultSuccess = "success"
	resultFailure = "failure"

	fallbackCauseSize  = "max_tx_size"
	fallbackCauseFunds = "insufficient_funds"
)

// Metrics collects counters about the coin selections performed by the
// services. A nil *Metrics is valid and records nothing.
type Metrics struct {
	selections  *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	inputCounts prometheus.Histogram
}

// NewMetrics creates the selection metrics and registers them on the given
// registerer, if any.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "selections_total",
			Help:      "Number of coin selections by strategy and result.",
		}, []string{"strategy", "result"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fallbacks_total",
			Help:      "Number of coin selections retried with largest-first.",
		}, []string{"cause"}),
		inputCounts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "selected_inputs",
			Help:      "Number of inputs of successful coin selections.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}

	if registerer == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.selections, m.fallbacks, m.inputCounts,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeSelection(
	strategy CoinSelectionStrategy, inputCount int, err error,
) {
	if m == nil {
		return
	}
	if err != nil {
		m.selections.WithLabelValues(strategy.String(), resultFailure).Inc()
		return
	}
	m.selections.WithLabelValues(strategy.String(), resultSuccess).Inc()
	m.inputCounts.Observe(float64(inputCount))
}

func (m *Metrics) observeFallback(cause string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(cause).Inc()
}
