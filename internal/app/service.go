// Package service implements the feedback event engine: event lifecycle,
// participant authorization, submission validation, and rating aggregation.
//
// Every mutating entry point runs under a single lock, giving the same
// total-order, all-or-nothing semantics the host environment would provide:
// all validation happens before the first state write, so a failed
// operation never leaves a partial mutation behind.
package service

import (
	"context"
	"sync"

	repository "github.com/okian/pulse/internal/adapters/repository"
	"github.com/okian/pulse/internal/domain/dedupe"
	"github.com/okian/pulse/internal/domain/height"
	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/stats"
	"github.com/okian/pulse/internal/domain/validate"
	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultMaxKinds   = 10
	defaultMaxBuckets = 10
)

// Service is the feedback event engine. All state lives in the wired
// components; the engine itself only sequences and validates.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	markers dedupe.Marker
	agg     stats.Aggregator
	clock   height.Provider

	maxKinds int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the state store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMarker sets the dedup marker tracker.
func WithMarker(m dedupe.Marker) Option {
	return func(s *Service) {
		if m != nil {
			s.markers = m
		}
	}
}

// WithAggregator sets the rating aggregator.
func WithAggregator(a stats.Aggregator) Option {
	return func(s *Service) {
		if a != nil {
			s.agg = a
		}
	}
}

// WithClock sets the height provider.
func WithClock(c height.Provider) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMaxKinds caps the feedback-kind list length accepted at creation.
func WithMaxKinds(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxKinds = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with in-memory components by default.
func New(opts ...Option) *Service {
	s := &Service{
		maxKinds: defaultMaxKinds,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMapStore()
	}
	if s.markers == nil {
		s.markers = dedupe.NewInMemoryMarker()
	}
	if s.agg == nil {
		s.agg = stats.NewInMemoryAggregator(stats.WithMaxBuckets(defaultMaxBuckets))
	}
	if s.clock == nil {
		s.clock = height.NewTicker()
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	return s
}

// CreateParams carries the configuration for a new event.
type CreateParams struct {
	Title            string
	Description      string
	Duration         uint64
	FeedbackKinds    []string
	MinRating        uint64
	MaxRating        uint64
	RequiresAuth     bool
	IncentiveEnabled bool
}

// CreateEvent allocates a new event id and stores the configuration.
// The id sequence is only advanced once all parameters validate.
func (s *Service) CreateEvent(ctx context.Context, caller string, p CreateParams) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validate.CreationKinds(p.FeedbackKinds, s.maxKinds) {
		return 0, ErrInvalidFeedbackTypes
	}
	if !validate.CreationRatingRange(p.MinRating, p.MaxRating) {
		return 0, ErrInvalidRatingRange
	}

	h := s.clock.Now(ctx)
	id := s.store.NextEventID(ctx)

	kinds := make([]string, len(p.FeedbackKinds))
	copy(kinds, p.FeedbackKinds)

	ev := model.Event{
		ID:               id,
		Creator:          caller,
		Title:            p.Title,
		Description:      p.Description,
		StartHeight:      h,
		EndHeight:        h + p.Duration,
		FeedbackKinds:    kinds,
		MinRating:        p.MinRating,
		MaxRating:        p.MaxRating,
		RequiresAuth:     p.RequiresAuth,
		IncentiveEnabled: p.IncentiveEnabled,
	}
	s.store.PutEvent(ctx, ev)

	metrics.RecordEventCreated()
	metrics.UpdateEventCount(s.store.EventCount(ctx))
	s.logger.Info(ctx, "event created",
		logger.Uint64("eventID", id),
		logger.String("creator", caller),
		logger.Uint64("startHeight", ev.StartHeight),
		logger.Uint64("endHeight", ev.EndHeight),
	)

	return id, nil
}

// CloseEvent marks an event closed. Only the creator may close; closing an
// already-closed event succeeds silently.
func (s *Service) CloseEvent(ctx context.Context, caller string, eventID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.store.Event(ctx, eventID)
	if err != nil {
		return err
	}
	if caller != ev.Creator {
		return ErrNotAuthorized
	}

	ev.Closed = true
	s.store.PutEvent(ctx, ev)

	metrics.RecordEventClosed()
	s.logger.Info(ctx, "event closed", logger.Uint64("eventID", eventID))

	return nil
}

// ExtendEvent pushes an event's end height further out. An event whose end
// height has already passed cannot be revived.
func (s *Service) ExtendEvent(ctx context.Context, caller string, eventID, additionalBlocks uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.store.Event(ctx, eventID)
	if err != nil {
		return err
	}
	if caller != ev.Creator {
		return ErrNotAuthorized
	}
	if validate.Expired(ev, s.clock.Now(ctx)) {
		return ErrEventExpired
	}

	ev.EndHeight += additionalBlocks
	s.store.PutEvent(ctx, ev)

	metrics.RecordEventExtended()
	s.logger.Info(ctx, "event extended",
		logger.Uint64("eventID", eventID),
		logger.Uint64("endHeight", ev.EndHeight),
	)

	return nil
}

// AddParticipant grants a participant access to an event requiring
// authentication. Creator-only; idempotent.
func (s *Service) AddParticipant(ctx context.Context, caller string, eventID uint64, participant string) error {
	return s.writeGrant(ctx, caller, eventID, participant, true)
}

// RemoveParticipant revokes a participant's access. The grant entry is
// overwritten with allowed=false, never deleted. Creator-only; idempotent.
func (s *Service) RemoveParticipant(ctx context.Context, caller string, eventID uint64, participant string) error {
	return s.writeGrant(ctx, caller, eventID, participant, false)
}

func (s *Service) writeGrant(ctx context.Context, caller string, eventID uint64, participant string, allowed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.store.Event(ctx, eventID)
	if err != nil {
		return err
	}
	if caller != ev.Creator {
		return ErrNotAuthorized
	}

	s.store.PutGrant(ctx, model.Grant{
		EventID:     eventID,
		Participant: participant,
		Allowed:     allowed,
	})

	if allowed {
		metrics.RecordParticipantGranted()
	} else {
		metrics.RecordParticipantRevoked()
	}
	s.logger.Info(ctx, "participant grant written",
		logger.Uint64("eventID", eventID),
		logger.String("participant", participant),
		logger.Any("allowed", allowed),
	)

	return nil
}

// SubmitRating records a rating submission and folds the value into the
// event's aggregate.
func (s *Service) SubmitRating(ctx context.Context, caller string, eventID, value uint64, anonymous bool) (uint64, error) {
	v := value
	return s.submit(ctx, caller, eventID, model.KindRating, anonymous, &v, nil, nil)
}

// SubmitReaction records a reaction submission.
func (s *Service) SubmitReaction(ctx context.Context, caller string, eventID uint64, reaction string, anonymous bool) (uint64, error) {
	r := reaction
	return s.submit(ctx, caller, eventID, model.KindReaction, anonymous, nil, &r, nil)
}

// SubmitText records a free-text submission.
func (s *Service) SubmitText(ctx context.Context, caller string, eventID uint64, text string, anonymous bool) (uint64, error) {
	t := text
	return s.submit(ctx, caller, eventID, model.KindText, anonymous, nil, nil, &t)
}

// submit is the shared validation pipeline. Checks run in a fixed order
// and short-circuit; no state is written until all checks pass.
func (s *Service) submit(ctx context.Context, caller string, eventID uint64, kind string, anonymous bool, rating *uint64, reaction, text *string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.store.Event(ctx, eventID)
	if err != nil {
		metrics.RecordSubmissionRejected("event_not_found")
		return 0, err
	}

	h := s.clock.Now(ctx)
	switch validate.Activity(ev, h) {
	case validate.WindowExpired:
		metrics.RecordSubmissionRejected("event_expired")
		return 0, ErrEventExpired
	case validate.WindowNotStarted:
		metrics.RecordSubmissionRejected("event_not_started")
		return 0, ErrEventNotStarted
	case validate.WindowActive:
	}

	grant, ok := s.store.Grant(ctx, repository.GrantKey{EventID: eventID, Participant: caller})
	if !validate.Authorized(ev, grant, ok) {
		metrics.RecordSubmissionRejected("unauthorized")
		return 0, ErrUnauthorized
	}

	if !validate.KindAllowed(ev, kind) {
		metrics.RecordSubmissionRejected("invalid_type")
		return 0, ErrInvalidFeedbackType
	}

	key := dedupe.Key{EventID: eventID, Participant: caller, Kind: kind}
	if s.markers.Seen(ctx, key) {
		metrics.RecordSubmissionRejected("duplicate")
		return 0, ErrDuplicateSubmission
	}

	if rating != nil && !validate.RatingInRange(ev, *rating) {
		metrics.RecordSubmissionRejected("invalid_value")
		return 0, ErrInvalidFeedbackValue
	}

	id := s.store.NextSubmissionID(ctx, eventID)
	sub := model.Submission{
		EventID:   eventID,
		ID:        id,
		Submitter: caller,
		Kind:      kind,
		Rating:    rating,
		Reaction:  reaction,
		Text:      text,
		Height:    h,
		Anonymous: anonymous,
	}
	s.store.PutSubmission(ctx, sub)
	s.markers.Record(ctx, key)

	if rating != nil {
		s.agg.RecordRating(ctx, eventID, *rating)
		metrics.ObserveRatingValue(float64(*rating))
	}

	metrics.RecordSubmissionAccepted(kind)
	metrics.UpdateMarkerCount(s.markers.Size())
	s.logger.Debug(ctx, "submission accepted",
		logger.Uint64("eventID", eventID),
		logger.Uint64("submissionID", id),
		logger.String("kind", kind),
		logger.Uint64("height", h),
	)

	return id, nil
}

// GetEvent returns the event with the given id.
func (s *Service) GetEvent(ctx context.Context, eventID uint64) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Event(ctx, eventID)
}

// GetEventCount returns the number of events ever created.
func (s *Service) GetEventCount(ctx context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.EventCount(ctx)
}

// GetSubmission returns one submission by (event, submission id).
func (s *Service) GetSubmission(ctx context.Context, eventID, submissionID uint64) (model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Submission(ctx, repository.SubmissionKey{EventID: eventID, ID: submissionID})
}

// GetSubmissionCount returns the number of accepted submissions for an
// event. Unknown events report zero.
func (s *Service) GetSubmissionCount(ctx context.Context, eventID uint64) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.SubmissionCount(ctx, eventID)
}

// GetRatingStats returns the rating aggregate for an event, ok=false when
// no rating was ever accepted.
func (s *Service) GetRatingStats(ctx context.Context, eventID uint64) (model.RatingStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agg.Stats(ctx, eventID)
}

// GetAverageRating returns the average accepted rating, ok=false when the
// event has no accepted ratings.
func (s *Service) GetAverageRating(ctx context.Context, eventID uint64) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agg.Average(ctx, eventID)
}

// HasParticipantSubmitted reports whether an identity already submitted
// feedback of the given kind to an event.
func (s *Service) HasParticipantSubmitted(ctx context.Context, eventID uint64, participant, kind string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markers.Seen(ctx, dedupe.Key{EventID: eventID, Participant: participant, Kind: kind})
}

// GetGrant returns the authorization entry for (event, participant),
// ok=false when none was ever written. Revoked entries are returned with
// Allowed=false rather than reported absent.
func (s *Service) GetGrant(ctx context.Context, eventID uint64, participant string) (model.Grant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Grant(ctx, repository.GrantKey{EventID: eventID, Participant: participant})
}

// CurrentHeight returns the engine's view of the current height.
func (s *Service) CurrentHeight(ctx context.Context) uint64 {
	return s.clock.Now(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	return map[string]interface{}{
		"events":       s.store.EventCount(ctx),
		"dedupMarkers": s.markers.Size(),
		"height":       s.clock.Now(ctx),
	}
}
