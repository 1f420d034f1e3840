package arb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Combo labels for the two tradable leg combinations of a paired binary
// market. Buying both legs below $1 locks the spread.
const (
	ComboPMYesKalshiNo = "PM-YES + K-NO"
	ComboKalshiYesPMNo = "K-YES + PM-NO"
)

// Opportunity is one priced arbitrage combination at evaluation time. The
// JSON field names are served verbatim by the inspection API and are part
// of its contract.
type Opportunity struct {
	ID           string    `json:"-"`
	Timestamp    time.Time `json:"timestamp"`
	Combo        string    `json:"combo"`
	EdgeAbs      float64   `json:"edge_abs"`
	EdgePctTurn  float64   `json:"edge_pct_turn"`
	PMTitle      string    `json:"pm_title"`
	PMYesAsk     float64   `json:"pm_yes_ask"`
	PMNoAsk      float64   `json:"pm_no_ask"`
	KalshiTicker string    `json:"kalshi_ticker"`
	KalshiTitle  string    `json:"kalshi_title"`
	KalshiYesBid float64   `json:"kalshi_yes_bid"`
	KalshiYesAsk float64   `json:"kalshi_yes_ask"`
	KalshiNoBid  float64   `json:"kalshi_no_bid"`
	KalshiNoAsk  float64   `json:"kalshi_no_ask"`
	TotalCost    float64   `json:"total_cost"`
}

// newOpportunityID returns a fresh identifier for logging and dedup.
func newOpportunityID() string {
	return uuid.New().String()
}

// ComputeEdge returns the absolute edge for buying both legs at cost.
func ComputeEdge(totalCost float64) float64 {
	return 1.0 - totalCost
}

// ComputeROR returns the return on turnover as a percentage. A non-positive
// cost has no meaningful turnover, so it yields zero.
func ComputeROR(totalCost float64) float64 {
	if totalCost <= 0 {
		return 0
	}

	return (ComputeEdge(totalCost) / totalCost) * 100.0
}

// String returns a human-readable representation of the opportunity.
func (o *Opportunity) String() string {
	id := o.ID
	if len(id) > 8 {
		id = id[:8]
	}

	return fmt.Sprintf(
		"Opportunity[%s] Combo=%s PM=%s Kalshi=%s Cost=%.4f Edge=%.4f ROR=%.2f%%",
		id,
		o.Combo,
		o.PMTitle,
		o.KalshiTicker,
		o.TotalCost,
		o.EdgeAbs,
		o.EdgePctTurn,
	)
}
