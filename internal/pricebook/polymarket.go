package pricebook

import "sync"

// PMQuote is the last-known top-of-book for one Polymarket outcome token.
// Prices are probabilities in [0, 1]; a zero side has never been observed.
type PMQuote struct {
	Ask float64
	Bid float64
}

// PMBook maps token IDs to their last-known quotes. It has a single writer
// (the Polymarket read loop) and many readers (engine, HTTP handlers).
type PMBook struct {
	mu     sync.RWMutex
	quotes map[string]PMQuote
}

// NewPMBook creates an empty Polymarket price book.
func NewPMBook() *PMBook {
	return &PMBook{
		quotes: make(map[string]PMQuote),
	}
}

// ApplyAsk merges a best-ask update for a token. The stored bid is kept.
// Non-positive prices are ignored; update frames carry one side at a time
// and zero means the side was not present in the frame.
func (b *PMBook) ApplyAsk(tokenID string, price float64) {
	if price <= 0 {
		return
	}

	b.mu.Lock()
	q := b.quotes[tokenID]
	q.Ask = price
	b.quotes[tokenID] = q
	b.mu.Unlock()
}

// ApplyBid merges a best-bid update for a token. The stored ask is kept.
func (b *PMBook) ApplyBid(tokenID string, price float64) {
	if price <= 0 {
		return
	}

	b.mu.Lock()
	q := b.quotes[tokenID]
	q.Bid = price
	b.quotes[tokenID] = q
	b.mu.Unlock()
}

// Quote returns a copy of the last-known quote for a token. The second
// return is false if the token was never updated; the caller skips the pair
// for the current tick.
func (b *PMBook) Quote(tokenID string) (PMQuote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	q, ok := b.quotes[tokenID]
	return q, ok
}

// Len returns the number of tokens with at least one observed side.
func (b *PMBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.quotes)
}
