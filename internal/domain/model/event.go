// Package model contains domain models passed between layers.
package model

// Feedback kinds populated by the submission entry points. Events may
// configure any short label; only these three carry a payload shape.
const (
	KindRating   = "rating"
	KindReaction = "reaction"
	KindText     = "text"
)

// Event is a time-bounded feedback collection session. Configuration is
// fixed at creation; only Closed and EndHeight change afterwards.
type Event struct {
	ID               uint64
	Creator          string
	Title            string
	Description      string
	StartHeight      uint64
	EndHeight        uint64
	FeedbackKinds    []string
	MinRating        uint64
	MaxRating        uint64
	RequiresAuth     bool
	IncentiveEnabled bool // stored, inert
	Closed           bool
}

// AllowsKind reports whether kind appears in the event's configured list.
func (e Event) AllowsKind(kind string) bool {
	for _, k := range e.FeedbackKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Submission is one accepted feedback item. Exactly one of Rating,
// Reaction, or Text is populated, according to Kind. Submitter is always
// stored; Anonymous is a display hint for consumers, not a storage rule.
type Submission struct {
	EventID   uint64
	ID        uint64 // per-event, sequential from 1
	Submitter string
	Kind      string
	Rating    *uint64
	Reaction  *string
	Text      *string
	Height    uint64
	Anonymous bool
}

// Grant records a participant's authorization for an event. Revocation
// flips Allowed to false rather than deleting the entry, so "revoked"
// stays distinguishable from "never granted".
type Grant struct {
	EventID     uint64
	Participant string
	Allowed     bool
}

// RatingStats is the running aggregate of accepted ratings for an event.
type RatingStats struct {
	Count     uint64
	Sum       uint64
	Histogram map[uint64]uint64
}
