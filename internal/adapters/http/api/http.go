// Package api declares HTTP contracts and route registration helpers.
//
// The HTTP surface is the host harness for the engine: it supplies caller
// identity (X-Caller header) and delegates everything else to the service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	repository "github.com/okian/pulse/internal/adapters/repository"
	service "github.com/okian/pulse/internal/app"
	"github.com/okian/pulse/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	CreateEvent(ctx context.Context, caller string, p service.CreateParams) (uint64, error)
	CloseEvent(ctx context.Context, caller string, eventID uint64) error
	ExtendEvent(ctx context.Context, caller string, eventID, additionalBlocks uint64) error
	AddParticipant(ctx context.Context, caller string, eventID uint64, participant string) error
	RemoveParticipant(ctx context.Context, caller string, eventID uint64, participant string) error

	SubmitRating(ctx context.Context, caller string, eventID, value uint64, anonymous bool) (uint64, error)
	SubmitReaction(ctx context.Context, caller string, eventID uint64, reaction string, anonymous bool) (uint64, error)
	SubmitText(ctx context.Context, caller string, eventID uint64, text string, anonymous bool) (uint64, error)

	GetEvent(ctx context.Context, eventID uint64) (model.Event, error)
	GetEventCount(ctx context.Context) uint64
	GetSubmission(ctx context.Context, eventID, submissionID uint64) (model.Submission, error)
	GetSubmissionCount(ctx context.Context, eventID uint64) uint64
	GetRatingStats(ctx context.Context, eventID uint64) (model.RatingStats, bool)
	GetAverageRating(ctx context.Context, eventID uint64) (float64, bool)
	HasParticipantSubmitted(ctx context.Context, eventID uint64, participant, kind string) bool
	GetGrant(ctx context.Context, eventID uint64, participant string) (model.Grant, bool)
	CurrentHeight(ctx context.Context) uint64
}

// StatsProvider exposes service statistics for the /stats endpoint.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Limits bounds the request payloads accepted at the HTTP surface. The
// engine never sees over-length text; it is rejected here as bad input.
type Limits struct {
	MaxTitleLen       int
	MaxDescriptionLen int
	MaxFeedbackKinds  int
	MaxKindLen        int
	MaxReactionLen    int
	MaxTextLen        int
}

// DefaultLimits returns the documented boundary limits.
func DefaultLimits() Limits {
	return Limits{
		MaxTitleLen:       100,
		MaxDescriptionLen: 500,
		MaxFeedbackKinds:  10,
		MaxKindLen:        20,
		MaxReactionLen:    20,
		MaxTextLen:        280,
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps   Dependencies
	limits Limits

	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	eventsHandler       *EventsHandler
	participantsHandler *ParticipantsHandler
	feedbackHandler     *FeedbackHandler
	queriesHandler      *QueriesHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithLimits overrides the boundary limits.
func WithLimits(l Limits) ServerOption {
	return func(s *Server) {
		s.limits = l
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		deps:   deps,
		limits: DefaultLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.eventsHandler = NewEventsHandler(deps, s.limits)
	s.participantsHandler = NewParticipantsHandler(deps)
	s.feedbackHandler = NewFeedbackHandler(deps, s.limits)
	s.queriesHandler = NewQueriesHandler(deps)

	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /events", MetricsMiddleware(s.eventsHandler.HandleCreateEvent, "create_event"))
	mux.HandleFunc("POST /events/{id}/close", MetricsMiddleware(s.eventsHandler.HandleCloseEvent, "close_event"))
	mux.HandleFunc("POST /events/{id}/extend", MetricsMiddleware(s.eventsHandler.HandleExtendEvent, "extend_event"))

	mux.HandleFunc("POST /events/{id}/participants", MetricsMiddleware(s.participantsHandler.HandleAddParticipant, "add_participant"))
	mux.HandleFunc("DELETE /events/{id}/participants/{participant}", MetricsMiddleware(s.participantsHandler.HandleRemoveParticipant, "remove_participant"))
	mux.HandleFunc("GET /events/{id}/participants/{participant}", MetricsMiddleware(s.queriesHandler.HandleGetGrant, "get_grant"))

	mux.HandleFunc("POST /events/{id}/feedback/rating", MetricsMiddleware(s.feedbackHandler.HandleSubmitRating, "submit_rating"))
	mux.HandleFunc("POST /events/{id}/feedback/reaction", MetricsMiddleware(s.feedbackHandler.HandleSubmitReaction, "submit_reaction"))
	mux.HandleFunc("POST /events/{id}/feedback/text", MetricsMiddleware(s.feedbackHandler.HandleSubmitText, "submit_text"))

	mux.HandleFunc("GET /events/count", MetricsMiddleware(s.queriesHandler.HandleGetEventCount, "event_count"))
	mux.HandleFunc("GET /events/{id}", MetricsMiddleware(s.queriesHandler.HandleGetEvent, "get_event"))
	mux.HandleFunc("GET /events/{id}/feedback/count", MetricsMiddleware(s.queriesHandler.HandleGetSubmissionCount, "submission_count"))
	mux.HandleFunc("GET /events/{id}/feedback/{sid}", MetricsMiddleware(s.queriesHandler.HandleGetSubmission, "get_submission"))
	mux.HandleFunc("GET /events/{id}/stats", MetricsMiddleware(s.queriesHandler.HandleGetRatingStats, "rating_stats"))
	mux.HandleFunc("GET /events/{id}/average", MetricsMiddleware(s.queriesHandler.HandleGetAverage, "average_rating"))
	mux.HandleFunc("GET /events/{id}/submitted", MetricsMiddleware(s.queriesHandler.HandleHasSubmitted, "has_submitted"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps engine failure kinds to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not_authorized", err)
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "unauthorized", err)
	case errors.Is(err, service.ErrEventExpired):
		writeError(w, http.StatusGone, "event_expired", err)
	case errors.Is(err, service.ErrEventNotStarted):
		writeError(w, http.StatusGone, "event_not_started", err)
	case errors.Is(err, service.ErrDuplicateSubmission):
		writeError(w, http.StatusConflict, "duplicate_submission", err)
	case errors.Is(err, service.ErrInvalidFeedbackType),
		errors.Is(err, service.ErrInvalidFeedbackValue),
		errors.Is(err, service.ErrInvalidFeedbackTypes),
		errors.Is(err, service.ErrInvalidRatingRange):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

// caller extracts the caller identity from the X-Caller header.
func caller(r *http.Request) (string, error) {
	id := r.Header.Get("X-Caller")
	if id == "" {
		return "", ErrMissingCaller
	}
	return id, nil
}
