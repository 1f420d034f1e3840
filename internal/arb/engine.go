package arb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/predmarkets/arbwatch/internal/pricebook"
	"go.uber.org/zap"
)

// KalshiStatus reports whether the Kalshi venue participates in evaluation.
// When disabled, every cycle produces an empty snapshot.
type KalshiStatus interface {
	Enabled() bool
}

// Engine evaluates every market pair on a fixed tick and publishes a sorted,
// capped snapshot of the opportunities that clear the return threshold.
type Engine struct {
	mu            sync.RWMutex
	pairs         []MarketPair
	pmBook        *pricebook.PMBook
	kalshiBook    *pricebook.KalshiBook
	kalshi        KalshiStatus
	threshold     float64
	tick          time.Duration
	maxOpps       int
	opportunities []Opportunity
	logger        *zap.Logger
	wg            sync.WaitGroup
}

// Config holds engine configuration.
type Config struct {
	Pairs       []MarketPair
	PMBook      *pricebook.PMBook
	KalshiBook  *pricebook.KalshiBook
	Kalshi      KalshiStatus
	Threshold   float64 // minimum return on turnover, percent
	Tick        time.Duration
	MaxSnapshot int
	Logger      *zap.Logger
}

// New creates a new arbitrage engine.
func New(cfg Config) *Engine {
	return &Engine{
		pairs:         cfg.Pairs,
		pmBook:        cfg.PMBook,
		kalshiBook:    cfg.KalshiBook,
		kalshi:        cfg.Kalshi,
		threshold:     cfg.Threshold,
		tick:          cfg.Tick,
		maxOpps:       cfg.MaxSnapshot,
		opportunities: make([]Opportunity, 0),
		logger:        cfg.Logger,
	}
}

// Start launches the evaluation loop. The first pass runs on the first tick,
// not immediately; books need time to warm up anyway.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("arbitrage-engine-starting",
		zap.Int("pairs", len(e.pairs)),
		zap.Float64("threshold-pct", e.threshold),
		zap.Duration("tick", e.tick))

	PairsTracked.Set(float64(len(e.pairs)))

	e.wg.Add(1)
	go e.evalLoop(ctx)
}

// Wait blocks until the evaluation loop has exited.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) evalLoop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("arbitrage-engine-stopping")
			return
		case <-ticker.C:
			start := time.Now()
			e.evaluate()
			EvalDurationSeconds.Observe(time.Since(start).Seconds())
		}
	}
}

// evaluate runs one full pass over all pairs and atomically swaps in the
// resulting snapshot. A pass with no qualifying pairs still swaps, so stale
// opportunities never outlive their prices.
func (e *Engine) evaluate() {
	newOpps := make([]Opportunity, 0, 100)

	// With Kalshi disabled there is nothing to cross against; swap in an
	// empty snapshot rather than serving stale results.
	pairs := e.pairs
	if !e.kalshi.Enabled() {
		pairs = nil
	}

	for _, pair := range pairs {
		pmYes, okYes := e.pmBook.Quote(pair.PMTokenYes)
		pmNo, okNo := e.pmBook.Quote(pair.PMTokenNo)
		if !okYes || !okNo || pmYes.Ask <= 0 || pmNo.Ask <= 0 {
			PairsSkippedTotal.WithLabelValues("pm_prices_missing").Inc()
			continue
		}

		kq, okK := e.kalshiBook.Quote(pair.KalshiTicker)
		if !okK || kq.YesBid <= 0 || kq.YesAsk <= 0 {
			PairsSkippedTotal.WithLabelValues("kalshi_prices_missing").Inc()
			continue
		}

		now := time.Now()

		// Buy YES on Polymarket, NO on Kalshi.
		if opp, ok := e.price(ComboPMYesKalshiNo, pmYes.Ask+kq.NoAsk, pair, pmYes.Ask, pmNo.Ask, kq, now); ok {
			newOpps = append(newOpps, opp)
		}

		// Buy YES on Kalshi, NO on Polymarket.
		if opp, ok := e.price(ComboKalshiYesPMNo, kq.YesAsk+pmNo.Ask, pair, pmYes.Ask, pmNo.Ask, kq, now); ok {
			newOpps = append(newOpps, opp)
		}
	}

	// Stable sort keeps equal-return opportunities in pair order, so the
	// served ranking does not flap between ticks.
	sort.SliceStable(newOpps, func(i, j int) bool {
		return newOpps[i].EdgePctTurn > newOpps[j].EdgePctTurn
	})

	if len(newOpps) > e.maxOpps {
		newOpps = newOpps[:e.maxOpps]
	}

	e.mu.Lock()
	e.opportunities = newOpps
	e.mu.Unlock()

	OpportunitiesCurrent.Set(float64(len(newOpps)))
	if len(newOpps) > 0 {
		BestEdgePct.Set(newOpps[0].EdgePctTurn)
		e.logger.Debug("arbitrage-snapshot-updated",
			zap.Int("count", len(newOpps)),
			zap.Stringer("best", &newOpps[0]))
	} else {
		BestEdgePct.Set(0)
	}
}

// price evaluates one combo against the threshold.
func (e *Engine) price(combo string, totalCost float64, pair MarketPair, pmYesAsk, pmNoAsk float64, kq pricebook.KalshiQuote, now time.Time) (Opportunity, bool) {
	if totalCost <= 0 {
		return Opportunity{}, false
	}

	ror := ComputeROR(totalCost)
	if ror < e.threshold {
		return Opportunity{}, false
	}

	OpportunitiesFoundTotal.Inc()

	return Opportunity{
		ID:           newOpportunityID(),
		Timestamp:    now,
		Combo:        combo,
		EdgeAbs:      ComputeEdge(totalCost),
		EdgePctTurn:  ror,
		PMTitle:      pair.PMTitle,
		PMYesAsk:     pmYesAsk,
		PMNoAsk:      pmNoAsk,
		KalshiTicker: pair.KalshiTicker,
		KalshiTitle:  pair.KalshiTitle,
		KalshiYesBid: kq.YesBid,
		KalshiYesAsk: kq.YesAsk,
		KalshiNoBid:  kq.NoBid,
		KalshiNoAsk:  kq.NoAsk,
		TotalCost:    totalCost,
	}, true
}

// Snapshot returns a copy of the current opportunity list, best first.
func (e *Engine) Snapshot() []Opportunity {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]Opportunity, len(e.opportunities))
	copy(result, e.opportunities)

	return result
}

// Top returns a copy of the best n opportunities.
func (e *Engine) Top(n int) []Opportunity {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if n > len(e.opportunities) {
		n = len(e.opportunities)
	}
	if n < 0 {
		n = 0
	}

	result := make([]Opportunity, n)
	copy(result, e.opportunities[:n])

	return result
}
