// Package validate holds the pure predicates used by the submission and
// lifecycle pipelines. Each function takes entity snapshots as explicit
// arguments so it can be tested without any shared state.
package validate

import "github.com/okian/pulse/internal/domain/model"

// Window classifies an event's activity at a given height.
type Window int

// Window states. Closed events and events whose start height is still in
// the future both classify as WindowNotStarted; only heights past the end
// classify as WindowExpired.
const (
	WindowActive Window = iota
	WindowNotStarted
	WindowExpired
)

// Activity classifies whether ev accepts submissions at height h.
func Activity(ev model.Event, h uint64) Window {
	if h > ev.EndHeight {
		return WindowExpired
	}
	if h < ev.StartHeight || ev.Closed {
		return WindowNotStarted
	}
	return WindowActive
}

// Expired reports whether height h is past the event's end.
func Expired(ev model.Event, h uint64) bool {
	return h > ev.EndHeight
}

// Authorized reports whether a caller passes the event's authorization
// gate. grant is the caller's entry, ok whether one exists at all; both
// are irrelevant when the event does not require authentication.
func Authorized(ev model.Event, grant model.Grant, ok bool) bool {
	if !ev.RequiresAuth {
		return true
	}
	return ok && grant.Allowed
}

// KindAllowed reports whether kind is one of the event's configured kinds.
func KindAllowed(ev model.Event, kind string) bool {
	return ev.AllowsKind(kind)
}

// RatingInRange reports whether value satisfies the event's rating bounds.
func RatingInRange(ev model.Event, value uint64) bool {
	return value >= ev.MinRating && value <= ev.MaxRating
}

// CreationKinds reports whether a feedback-kind list is acceptable at
// creation: at least one entry, at most max, no empty labels.
func CreationKinds(kinds []string, max int) bool {
	if len(kinds) == 0 || len(kinds) > max {
		return false
	}
	for _, k := range kinds {
		if k == "" {
			return false
		}
	}
	return true
}

// CreationRatingRange reports whether the configured bounds are valid.
func CreationRatingRange(minRating, maxRating uint64) bool {
	return minRating < maxRating
}
