package websocket

import (
	"math/rand"
	"sync"
	"time"
)

// BackoffConfig holds the configuration for exponential backoff reconnection.
type BackoffConfig struct {
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterPercent     float64 // 0.2 = 20%
}

// Backoff computes reconnection delays with exponential growth and optional
// jitter. The returned delay never exceeds MaxDelay, jitter included.
type Backoff struct {
	config  BackoffConfig
	current time.Duration
	mu      sync.Mutex
}

// NewBackoff creates a Backoff starting at the initial delay.
func NewBackoff(cfg BackoffConfig) *Backoff {
	if cfg.BackoffMultiplier < 1.0 {
		cfg.BackoffMultiplier = 2.0
	}
	return &Backoff{
		config:  cfg,
		current: cfg.InitialDelay,
	}
}

// Next returns the delay to wait before the next attempt and advances the
// backoff for the attempt after it.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	jitter := rand.Float64() * b.config.JitterPercent
	delay := time.Duration(float64(b.current) * (1.0 + jitter))
	if delay > b.config.MaxDelay {
		delay = b.config.MaxDelay
	}

	next := time.Duration(float64(b.current) * b.config.BackoffMultiplier)
	if next > b.config.MaxDelay {
		next = b.config.MaxDelay
	}
	b.current = next

	return delay
}

// Reset returns the backoff to the initial delay. Called after a connection
// reaches the reading state.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = b.config.InitialDelay
}
