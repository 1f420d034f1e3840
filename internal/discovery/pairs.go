package discovery

import (
	"time"

	"github.com/predmarkets/arbwatch/internal/arb"
	"github.com/predmarkets/arbwatch/internal/match"
	"github.com/predmarkets/arbwatch/pkg/cache"
	"go.uber.org/zap"
)

// tokenCacheTTL is generous: the pairing pass runs once at startup and the
// cache dies with the process.
const tokenCacheTTL = time.Hour

// Pairer matches Polymarket markets against Kalshi markets by title
// similarity and expiration proximity.
type Pairer struct {
	simThreshold float64
	timeWindow   time.Duration
	tokenCache   cache.Cache
	logger       *zap.Logger
}

// PairerConfig holds pairing configuration.
type PairerConfig struct {
	SimThreshold float64
	TimeWindow   time.Duration
	TokenCache   cache.Cache
	Logger       *zap.Logger
}

// NewPairer creates a new pairer.
func NewPairer(cfg PairerConfig) *Pairer {
	return &Pairer{
		simThreshold: cfg.SimThreshold,
		timeWindow:   cfg.TimeWindow,
		tokenCache:   cfg.TokenCache,
		logger:       cfg.Logger,
	}
}

// BuildPairs runs the full cross product of both market lists and keeps
// every combination whose titles score at or above the similarity threshold
// and whose expirations fall within the time window. The result is fixed
// for the process lifetime.
func (p *Pairer) BuildPairs(pmMarkets []PMMarket, kalshiMarkets []KalshiMarket) []arb.MarketPair {
	pairs := make([]arb.MarketPair, 0)

	p.warmKalshiTokens(kalshiMarkets)

	for _, pm := range pmMarkets {
		yesToken, noToken, ok := outcomeTokens(pm)
		if !ok {
			p.logger.Debug("skipping-pm-market-without-yes-no-tokens",
				zap.String("question", pm.Question))
			continue
		}

		pmTokens := p.titleTokens("pm", pm.Question)

		for _, k := range kalshiMarkets {
			kTokens := p.titleTokens("k", k.Title)

			if match.JaccardSimilarity(pmTokens, kTokens) < p.simThreshold {
				continue
			}
			if !p.withinTimeWindow(pm.EndDateISO, k.ExpirationTime) {
				continue
			}

			pairs = append(pairs, arb.MarketPair{
				PMTokenYes:   yesToken,
				PMTokenNo:    noToken,
				PMTitle:      pm.Question,
				KalshiTicker: k.Ticker,
				KalshiTitle:  k.Title,
			})

			p.logger.Debug("market-pair-created",
				zap.String("pm-title", pm.Question),
				zap.String("kalshi-ticker", k.Ticker))
		}
	}

	PairsBuilt.Set(float64(len(pairs)))

	return pairs
}

// warmKalshiTokens tokenizes every Kalshi title once up front. Cache writes
// land asynchronously, so the pass also waits for them; without the wait the
// cross-product loop would miss and re-tokenize each Kalshi title once per
// Polymarket market.
func (p *Pairer) warmKalshiTokens(kalshiMarkets []KalshiMarket) {
	for _, k := range kalshiMarkets {
		p.titleTokens("k", k.Title)
	}

	if w, ok := p.tokenCache.(interface{ Wait() }); ok {
		w.Wait()
	}
}

// titleTokens memoizes the normalized token set of a title. The pairing
// pass is a cross product, so every Kalshi title would otherwise be
// re-tokenized once per Polymarket market.
func (p *Pairer) titleTokens(venue, title string) []string {
	key := venue + ":" + title

	if cached, found := p.tokenCache.Get(key); found {
		if tokens, ok := cached.([]string); ok {
			return tokens
		}
	}

	tokens := match.Tokenize(match.NormalizeTitle(title))
	p.tokenCache.Set(key, tokens, tokenCacheTTL)

	return tokens
}

// withinTimeWindow is a soft check: it only rejects when both expirations
// parse and disagree by more than the window.
func (p *Pairer) withinTimeWindow(pmEnd, kalshiEnd string) bool {
	if pmEnd == "" || kalshiEnd == "" {
		return true
	}

	a, errA := time.Parse(time.RFC3339, pmEnd)
	b, errB := time.Parse(time.RFC3339, kalshiEnd)
	if errA != nil || errB != nil {
		return true
	}

	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}

	return diff <= p.timeWindow
}

// outcomeTokens extracts the YES and NO token IDs of a binary market.
func outcomeTokens(pm PMMarket) (yes, no string, ok bool) {
	for _, token := range pm.Tokens {
		switch token.Outcome {
		case "YES":
			yes = token.TokenID
		case "NO":
			no = token.TokenID
		}
	}

	return yes, no, yes != "" && no != ""
}

// ExtractPMTokenIDs returns the deduplicated Polymarket token IDs of pairs.
func ExtractPMTokenIDs(pairs []arb.MarketPair) []string {
	seen := make(map[string]struct{}, len(pairs)*2)
	tokens := make([]string, 0, len(pairs)*2)

	for _, p := range pairs {
		for _, id := range []string{p.PMTokenYes, p.PMTokenNo} {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				tokens = append(tokens, id)
			}
		}
	}

	return tokens
}

// ExtractKalshiTickers returns the deduplicated Kalshi tickers of pairs.
func ExtractKalshiTickers(pairs []arb.MarketPair) []string {
	seen := make(map[string]struct{}, len(pairs))
	tickers := make([]string, 0, len(pairs))

	for _, p := range pairs {
		if _, dup := seen[p.KalshiTicker]; !dup {
			seen[p.KalshiTicker] = struct{}{}
			tickers = append(tickers, p.KalshiTicker)
		}
	}

	return tickers
}
