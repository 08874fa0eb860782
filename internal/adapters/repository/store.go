// Package repository defines the engine state store interface and errors.
package repository

import (
	"context"

	"github.com/okian/pulse/internal/domain/model"
)

// GrantKey addresses one authorization entry.
type GrantKey struct {
	EventID     uint64
	Participant string
}

// SubmissionKey addresses one submission within an event's ledger.
type SubmissionKey struct {
	EventID uint64
	ID      uint64
}

// Store provides read/write access to the engine state: events, grants,
// submissions, and the id sequences. Callers are expected to validate
// before writing; the store enforces no domain rules of its own.
type Store interface {
	// NextEventID allocates and returns the next event id. The sequence
	// starts at 1 and never reuses ids.
	NextEventID(ctx context.Context) uint64

	// PutEvent stores or overwrites an event.
	PutEvent(ctx context.Context, ev model.Event)

	// Event returns the event with the given id.
	// Returns ErrEventNotFound if the id is unknown.
	Event(ctx context.Context, id uint64) (model.Event, error)

	// EventCount returns the number of events ever created.
	EventCount(ctx context.Context) uint64

	// PutGrant stores or overwrites an authorization entry. Entries are
	// never deleted; revocation overwrites Allowed to false.
	PutGrant(ctx context.Context, g model.Grant)

	// Grant returns the authorization entry for key, ok=false when no
	// entry was ever written.
	Grant(ctx context.Context, key GrantKey) (model.Grant, bool)

	// NextSubmissionID allocates the next submission id for an event.
	// The per-event sequence starts at 1.
	NextSubmissionID(ctx context.Context, eventID uint64) uint64

	// PutSubmission appends a submission to the event's ledger.
	PutSubmission(ctx context.Context, sub model.Submission)

	// Submission returns the submission with the given key.
	// Returns ErrSubmissionNotFound if the key is unknown.
	Submission(ctx context.Context, key SubmissionKey) (model.Submission, error)

	// SubmissionCount returns the number of submissions accepted for an
	// event. Unknown events report zero.
	SubmissionCount(ctx context.Context, eventID uint64) uint64
}
