package pricebook

import "sync"

// KalshiQuote is the last-known ticker state for one Kalshi market. NO sides
// are derived from YES at apply time: NoBid = 1 - YesAsk, NoAsk = 1 - YesBid.
type KalshiQuote struct {
	YesBid float64
	YesAsk float64
	NoBid  float64
	NoAsk  float64
}

// KalshiBook maps market tickers to their last-known quotes. Each ticker
// frame replaces all four sides atomically.
type KalshiBook struct {
	mu     sync.RWMutex
	quotes map[string]KalshiQuote
}

// NewKalshiBook creates an empty Kalshi price book.
func NewKalshiBook() *KalshiBook {
	return &KalshiBook{
		quotes: make(map[string]KalshiQuote),
	}
}

// Apply replaces the quote for a ticker from a full YES bid/ask pair.
func (b *KalshiBook) Apply(ticker string, yesBid, yesAsk float64) {
	q := KalshiQuote{
		YesBid: yesBid,
		YesAsk: yesAsk,
		NoBid:  1.0 - yesAsk,
		NoAsk:  1.0 - yesBid,
	}

	b.mu.Lock()
	b.quotes[ticker] = q
	b.mu.Unlock()
}

// Quote returns a copy of the last-known quote for a ticker.
func (b *KalshiBook) Quote(ticker string) (KalshiQuote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	q, ok := b.quotes[ticker]
	return q, ok
}

// Len returns the number of tickers with an observed quote.
func (b *KalshiBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.quotes)
}
