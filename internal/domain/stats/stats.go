// Package stats maintains running rating aggregates per event.
package stats

import (
	"context"
	"sync"

	"github.com/okian/pulse/internal/domain/model"
)

// Default aggregation configuration constants.
const (
	defaultMaxBuckets = 10
)

// Aggregator keeps count, sum, and a bounded histogram of accepted rating
// values per event. Values are never removed; there is no retraction.
type Aggregator interface {
	// RecordRating folds one accepted rating value into the event's
	// aggregate. Count and sum are always updated; a histogram bucket is
	// only created while fewer than the configured cap of distinct values
	// are present.
	RecordRating(ctx context.Context, eventID, value uint64)

	// Stats returns a copy of the event's aggregate. ok is false when the
	// event has no accepted ratings yet.
	Stats(ctx context.Context, eventID uint64) (model.RatingStats, bool)

	// Average returns sum/count for the event, ok=false when count is zero.
	Average(ctx context.Context, eventID uint64) (float64, bool)
}

// InMemoryAggregator implements Aggregator with per-event aggregates.
type InMemoryAggregator struct {
	mu         sync.RWMutex
	byEvent    map[uint64]*model.RatingStats
	maxBuckets int
}

// Option applies a configuration option to the InMemoryAggregator.
type Option func(*InMemoryAggregator)

// WithMaxBuckets caps the number of distinct histogram values per event.
func WithMaxBuckets(n int) Option {
	return func(a *InMemoryAggregator) {
		if n > 0 {
			a.maxBuckets = n
		}
	}
}

// NewInMemoryAggregator creates an aggregator with configuration options.
func NewInMemoryAggregator(opts ...Option) *InMemoryAggregator {
	a := &InMemoryAggregator{
		byEvent:    make(map[uint64]*model.RatingStats),
		maxBuckets: defaultMaxBuckets,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RecordRating folds one accepted rating value into the event's aggregate.
func (a *InMemoryAggregator) RecordRating(_ context.Context, eventID, value uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	agg, ok := a.byEvent[eventID]
	if !ok {
		agg = &model.RatingStats{Histogram: make(map[uint64]uint64, a.maxBuckets)}
		a.byEvent[eventID] = agg
	}

	agg.Count++
	agg.Sum += value

	// Overflow policy: values beyond the bucket cap still count toward
	// count and sum but get no bucket of their own.
	if _, exists := agg.Histogram[value]; exists || len(agg.Histogram) < a.maxBuckets {
		agg.Histogram[value]++
	}
}

// Stats returns a copy of the event's aggregate.
func (a *InMemoryAggregator) Stats(_ context.Context, eventID uint64) (model.RatingStats, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	agg, ok := a.byEvent[eventID]
	if !ok {
		return model.RatingStats{}, false
	}

	out := model.RatingStats{
		Count:     agg.Count,
		Sum:       agg.Sum,
		Histogram: make(map[uint64]uint64, len(agg.Histogram)),
	}
	for v, n := range agg.Histogram {
		out.Histogram[v] = n
	}
	return out, true
}

// Average returns sum/count for the event.
func (a *InMemoryAggregator) Average(_ context.Context, eventID uint64) (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	agg, ok := a.byEvent[eventID]
	if !ok || agg.Count == 0 {
		return 0, false
	}
	return float64(agg.Sum) / float64(agg.Count), true
}
