package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	venuePolymarket = "polymarket"
	venueKalshi     = "kalshi"
)

var (
	// MarketsDiscoveredTotal tracks markets fetched per venue.
	MarketsDiscoveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbwatch_discovery_markets_total",
			Help: "Total number of markets discovered per venue",
		},
		[]string{"venue"},
	)

	// FetchErrorsTotal tracks REST fetch failures per venue.
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbwatch_discovery_fetch_errors_total",
			Help: "Total number of market fetch failures per venue",
		},
		[]string{"venue"},
	)

	// FetchDurationSeconds tracks full paginated fetch latency per venue.
	FetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arbwatch_discovery_fetch_duration_seconds",
			Help:    "Duration of a full paginated market fetch per venue",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"venue"},
	)

	// PairsBuilt reports how many cross-venue pairs the last pairing
	// pass produced.
	PairsBuilt = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbwatch_discovery_pairs_built",
		Help: "Number of cross-venue market pairs built at startup",
	})
)
