package repository

import (
	"context"
	"sync"

	"github.com/okian/pulse/internal/domain/model"
)

// MapStore implements Store with plain maps guarded by a RWMutex. The
// engine serializes mutations, so the lock only protects concurrent
// readers of the query projections.
type MapStore struct {
	mu          sync.RWMutex
	events      map[uint64]model.Event
	grants      map[GrantKey]model.Grant
	submissions map[SubmissionKey]model.Submission
	eventSeq    uint64
	subSeq      map[uint64]uint64
}

// Option applies a configuration option to the MapStore.
type Option func(*MapStore)

// WithEventCapacity pre-sizes the event map.
func WithEventCapacity(n int) Option {
	return func(s *MapStore) {
		if n > 0 {
			s.events = make(map[uint64]model.Event, n)
		}
	}
}

// NewMapStore creates an empty in-memory state store.
func NewMapStore(opts ...Option) *MapStore {
	s := &MapStore{
		events:      make(map[uint64]model.Event),
		grants:      make(map[GrantKey]model.Grant),
		submissions: make(map[SubmissionKey]model.Submission),
		subSeq:      make(map[uint64]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextEventID allocates and returns the next event id.
func (s *MapStore) NextEventID(_ context.Context) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventSeq++
	return s.eventSeq
}

// PutEvent stores or overwrites an event.
func (s *MapStore) PutEvent(_ context.Context, ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = ev
}

// Event returns the event with the given id.
func (s *MapStore) Event(_ context.Context, id uint64) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	if !ok {
		return model.Event{}, ErrEventNotFound
	}
	return ev, nil
}

// EventCount returns the number of events ever created.
func (s *MapStore) EventCount(_ context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventSeq
}

// PutGrant stores or overwrites an authorization entry.
func (s *MapStore) PutGrant(_ context.Context, g model.Grant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[GrantKey{EventID: g.EventID, Participant: g.Participant}] = g
}

// Grant returns the authorization entry for key.
func (s *MapStore) Grant(_ context.Context, key GrantKey) (model.Grant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[key]
	return g, ok
}

// NextSubmissionID allocates the next submission id for an event.
func (s *MapStore) NextSubmissionID(_ context.Context, eventID uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subSeq[eventID]++
	return s.subSeq[eventID]
}

// PutSubmission appends a submission to the event's ledger.
func (s *MapStore) PutSubmission(_ context.Context, sub model.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[SubmissionKey{EventID: sub.EventID, ID: sub.ID}] = sub
}

// Submission returns the submission with the given key.
func (s *MapStore) Submission(_ context.Context, key SubmissionKey) (model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[key]
	if !ok {
		return model.Submission{}, ErrSubmissionNotFound
	}
	return sub, nil
}

// SubmissionCount returns the number of submissions accepted for an event.
func (s *MapStore) SubmissionCount(_ context.Context, eventID uint64) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subSeq[eventID]
}
