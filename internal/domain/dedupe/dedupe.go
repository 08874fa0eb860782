// Package dedupe tracks which (event, participant, kind) combinations have
// already produced an accepted submission.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Key identifies one dedup marker.
type Key struct {
	EventID     uint64
	Participant string
	Kind        string
}

// Marker records accepted submissions per (event, participant, kind).
// A recorded key stays recorded for the lifetime of the process; there is
// no eviction and no reset, which is the sole mechanism preventing a
// second submission of the same kind by the same identity.
type Marker interface {
	// Seen reports whether key has already been recorded.
	Seen(ctx context.Context, key Key) bool

	// Record marks key as seen. Recording an already-seen key is a no-op.
	Record(ctx context.Context, key Key)

	Size() int64
}

// inMemoryMarker implements Marker with a plain map. Unlike caches keyed
// by transient request ids, these markers are part of the engine state and
// must never be dropped, so there is no bounded mode.
type inMemoryMarker struct {
	mu   sync.RWMutex
	seen map[Key]struct{}
	size atomic.Int64
}

// Option applies a configuration option to the in-memory marker.
type Option func(*inMemoryMarker)

// WithInitialCapacity pre-sizes the marker map.
func WithInitialCapacity(n int) Option {
	return func(m *inMemoryMarker) {
		if n > 0 {
			m.seen = make(map[Key]struct{}, n)
		}
	}
}

// NewInMemoryMarker creates a new in-memory marker.
func NewInMemoryMarker(opts ...Option) Marker {
	m := &inMemoryMarker{
		seen: make(map[Key]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Seen reports whether key has already been recorded.
func (m *inMemoryMarker) Seen(_ context.Context, key Key) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.seen[key]
	return ok
}

// Record marks key as seen.
func (m *inMemoryMarker) Record(_ context.Context, key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[key]; ok {
		return
	}
	m.seen[key] = struct{}{}
	m.size.Add(1)
}

// Size returns the number of recorded markers.
func (m *inMemoryMarker) Size() int64 {
	return m.size.Load()
}
