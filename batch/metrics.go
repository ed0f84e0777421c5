package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"
)

type metrics struct {
	runs        *prometheus.CounterVec
	rounds      prometheus.Histogram
	missedPairs prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dvsim",
			Name:      "runs_total",
			Help:      "Simulated runs by outcome.",
		}, []string{"outcome"}),
		rounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dvsim",
			Name:      "run_rounds",
			Help:      "Rounds executed per run.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		missedPairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dvsim",
			Name:      "suboptimal_pairs_total",
			Help:      "Reachable node pairs without an optimal path after a run.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{m.runs, m.rounds, m.missedPairs} {
		if err := reg.Register(c); err != nil {
			return nil, xerrors.Errorf("register batch metrics: %w", err)
		}
	}
	return m, nil
}

func (m *metrics) observe(res Result) {
	outcome := "optimal"
	if !res.Optimal() {
		outcome = "suboptimal"
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.rounds.Observe(float64(res.Rounds))
	m.missedPairs.Add(float64(res.ReachablePairs - res.OptimalPairs))
}
