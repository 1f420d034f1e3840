package arb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PairsTracked reports how many market pairs the engine evaluates.
	PairsTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbwatch_arb_pairs",
		Help: "Number of matched market pairs under evaluation",
	})

	// OpportunitiesFoundTotal counts every opportunity that cleared the
	// return threshold, across all evaluation cycles.
	OpportunitiesFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbwatch_arb_opportunities_found_total",
		Help: "Total number of arbitrage opportunities found",
	})

	// OpportunitiesCurrent reports the size of the latest snapshot.
	OpportunitiesCurrent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbwatch_arb_opportunities_current",
		Help: "Number of opportunities in the current snapshot",
	})

	// BestEdgePct reports the best return on turnover of the current
	// snapshot, zero when the snapshot is empty.
	BestEdgePct = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbwatch_arb_best_edge_pct",
		Help: "Best return on turnover in the current snapshot (percent)",
	})

	// EvalDurationSeconds tracks the duration of one full evaluation pass.
	EvalDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbwatch_arb_eval_duration_seconds",
		Help:    "Duration of one arbitrage evaluation pass",
		Buckets: prometheus.DefBuckets,
	})

	// PairsSkippedTotal counts pairs skipped per evaluation, by reason.
	PairsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbwatch_arb_pairs_skipped_total",
			Help: "Total number of pair evaluations skipped",
		},
		[]string{"reason"},
	)
)
