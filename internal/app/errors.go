package service

import "errors"

// Sentinel kinds for engine operation failures. Every entry point failure
// mode maps to exactly one of these (or to the repository's not-found
// kinds) and leaves all state untouched.
var (
	// ErrNotAuthorized rejects creator-only actions by non-creators.
	ErrNotAuthorized = errors.New("caller is not the event creator")

	// ErrEventExpired rejects operations past the event's end height.
	ErrEventExpired = errors.New("event has expired")

	// ErrEventNotStarted rejects submissions before the start height or on
	// a closed event.
	ErrEventNotStarted = errors.New("event has not started")

	// ErrUnauthorized rejects submissions by callers without an allowed
	// grant on an event requiring authentication.
	ErrUnauthorized = errors.New("caller is not an allowed participant")

	// ErrInvalidFeedbackType rejects submissions whose kind is not in the
	// event's configured list.
	ErrInvalidFeedbackType = errors.New("feedback type not allowed for event")

	// ErrInvalidFeedbackValue rejects ratings outside the configured range.
	ErrInvalidFeedbackValue = errors.New("rating value out of range")

	// ErrDuplicateSubmission rejects a second submission of the same kind
	// by the same identity.
	ErrDuplicateSubmission = errors.New("duplicate submission")

	// ErrInvalidFeedbackTypes rejects creation with a malformed kind list.
	ErrInvalidFeedbackTypes = errors.New("invalid feedback types")

	// ErrInvalidRatingRange rejects creation with min >= max.
	ErrInvalidRatingRange = errors.New("invalid rating range")
)
