// Package simulate drives a running Pulse server with generated feedback
// traffic and verifies the resulting aggregates.
package simulate

import (
	"sync/atomic"
	"time"
)

// Config controls a simulation run.
type Config struct {
	BaseURL      string
	Events       int
	Participants int
	Workers      int
	Timeout      time.Duration
	Verbose      bool
}

// Stats accumulates simulation results across workers.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	EventsCreated        atomic.Int64
	GrantsWritten        atomic.Int64
	SubmissionsAccepted  atomic.Int64
	SubmissionsRejected  atomic.Int64
	DuplicatesRejected   atomic.Int64
	VerificationFailures atomic.Int64
}
