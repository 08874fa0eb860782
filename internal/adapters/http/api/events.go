// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	service "github.com/okian/pulse/internal/app"
)

// EventsHandler handles event lifecycle requests.
type EventsHandler struct {
	deps   Dependencies
	limits Limits
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies, limits Limits) *EventsHandler {
	return &EventsHandler{deps: deps, limits: limits}
}

// createEventRequest mirrors the create_event entry point.
type createEventRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Duration         uint64   `json:"duration"`
	FeedbackKinds    []string `json:"feedback_kinds"`
	MinRating        uint64   `json:"min_rating"`
	MaxRating        uint64   `json:"max_rating"`
	RequiresAuth     bool     `json:"requires_auth"`
	IncentiveEnabled bool     `json:"incentive_enabled"`
}

func (req createEventRequest) validate(limits Limits) error {
	switch {
	case len(req.Title) > limits.MaxTitleLen:
		return fmt.Errorf("title exceeds %d characters", limits.MaxTitleLen)
	case len(req.Description) > limits.MaxDescriptionLen:
		return fmt.Errorf("description exceeds %d characters", limits.MaxDescriptionLen)
	case len(req.FeedbackKinds) > limits.MaxFeedbackKinds:
		return fmt.Errorf("more than %d feedback kinds", limits.MaxFeedbackKinds)
	}
	for _, k := range req.FeedbackKinds {
		if len(k) > limits.MaxKindLen {
			return fmt.Errorf("feedback kind exceeds %d characters", limits.MaxKindLen)
		}
	}
	return nil
}

type createEventResponse struct {
	EventID uint64 `json:"event_id"`
}

// HandleCreateEvent handles POST /events requests.
func (h *EventsHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_caller", err)
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(h.limits); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	id, err := h.deps.CreateEvent(r.Context(), who, service.CreateParams{
		Title:            req.Title,
		Description:      req.Description,
		Duration:         req.Duration,
		FeedbackKinds:    req.FeedbackKinds,
		MinRating:        req.MinRating,
		MaxRating:        req.MaxRating,
		RequiresAuth:     req.RequiresAuth,
		IncentiveEnabled: req.IncentiveEnabled,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createEventResponse{EventID: id})
}

type okResponse struct {
	OK bool `json:"ok"`
}

// HandleCloseEvent handles POST /events/{id}/close requests.
func (h *EventsHandler) HandleCloseEvent(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_caller", err)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	if err := h.deps.CloseEvent(r.Context(), who, eventID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type extendEventRequest struct {
	AdditionalBlocks uint64 `json:"additional_blocks"`
}

// HandleExtendEvent handles POST /events/{id}/extend requests.
func (h *EventsHandler) HandleExtendEvent(w http.ResponseWriter, r *http.Request) {
	who, err := caller(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_caller", err)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	var req extendEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	if err := h.deps.ExtendEvent(r.Context(), who, eventID, req.AdditionalBlocks); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// pathID parses a uint64 path segment.
func pathID(r *http.Request, name string) (uint64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadRequest, name, raw)
	}
	return id, nil
}
