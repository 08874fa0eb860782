// Package height supplies the monotonic block-height clock consumed by the
// engine. The host environment owns real height; these implementations
// stand in for it in the runnable harness and in tests.
package height

import (
	"context"
	"sync"
	"time"
)

// Default clock configuration constants.
const (
	defaultGenesis       = 1
	defaultBlockInterval = time.Second
)

// Provider yields the current height. Implementations must be monotonic
// non-decreasing: no call may observe a height smaller than a prior one.
type Provider interface {
	// Now returns the current height.
	Now(ctx context.Context) uint64
}

// Ticker derives height from wall time: genesis plus one height unit per
// elapsed block interval.
type Ticker struct {
	mu       sync.Mutex
	genesis  uint64
	interval time.Duration
	start    time.Time
	now      func() time.Time
	last     uint64
}

// TickerOption applies a configuration option to the Ticker.
type TickerOption func(*Ticker)

// WithGenesis sets the height reported at start time.
func WithGenesis(h uint64) TickerOption {
	return func(t *Ticker) {
		t.genesis = h
	}
}

// WithBlockInterval sets the wall-time duration of one height unit.
func WithBlockInterval(d time.Duration) TickerOption {
	return func(t *Ticker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithTimeSource overrides the wall clock, for tests.
func WithTimeSource(now func() time.Time) TickerOption {
	return func(t *Ticker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTicker creates a wall-time backed height provider.
func NewTicker(opts ...TickerOption) *Ticker {
	t := &Ticker{
		genesis:  defaultGenesis,
		interval: defaultBlockInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.start = t.now()
	t.last = t.genesis
	return t
}

// Now returns the current height. Guards against the wall clock stepping
// backwards by never returning less than a previously returned height.
func (t *Ticker) Now(_ context.Context) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := t.now().Sub(t.start)
	h := t.genesis
	if elapsed > 0 {
		h += uint64(elapsed / t.interval)
	}
	if h < t.last {
		return t.last
	}
	t.last = h
	return h
}

// Manual is a hand-advanced height provider for tests and the simulator.
type Manual struct {
	mu sync.Mutex
	h  uint64
}

// NewManual creates a manual provider starting at h.
func NewManual(h uint64) *Manual {
	return &Manual{h: h}
}

// Now returns the current height.
func (m *Manual) Now(_ context.Context) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.h
}

// Advance moves the height forward by n.
func (m *Manual) Advance(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.h += n
}

// Set moves the height to h. Attempts to move backwards are ignored so the
// monotonic contract holds.
func (m *Manual) Set(h uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h > m.h {
		m.h = h
	}
}
