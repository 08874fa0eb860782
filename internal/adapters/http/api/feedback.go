// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// FeedbackHandler handles submission requests.
type FeedbackHandler struct {
	deps   Dependencies
	limits Limits
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(deps Dependencies, limits Limits) *FeedbackHandler {
	return &FeedbackHandler{deps: deps, limits: limits}
}

type ratingRequest struct {
	Value     uint64 `json:"value"`
	Anonymous bool   `json:"anonymous"`
}

type reactionRequest struct {
	Reaction  string `json:"reaction"`
	Anonymous bool   `json:"anonymous"`
}

type textRequest struct {
	Text      string `json:"text"`
	Anonymous bool   `json:"anonymous"`
}

type submissionResponse struct {
	SubmissionID uint64 `json:"submission_id"`
}

// HandleSubmitRating handles POST /events/{id}/feedback/rating requests.
func (h *FeedbackHandler) HandleSubmitRating(w http.ResponseWriter, r *http.Request) {
	who, eventID, ok := h.prepare(w, r)
	if !ok {
		return
	}

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	id, err := h.deps.SubmitRating(r.Context(), who, eventID, req.Value, req.Anonymous)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submissionResponse{SubmissionID: id})
}

// HandleSubmitReaction handles POST /events/{id}/feedback/reaction requests.
func (h *FeedbackHandler) HandleSubmitReaction(w http.ResponseWriter, r *http.Request) {
	who, eventID, ok := h.prepare(w, r)
	if !ok {
		return
	}

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if req.Reaction == "" || len(req.Reaction) > h.limits.MaxReactionLen {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: reaction must be 1-%d characters", ErrBadRequest, h.limits.MaxReactionLen))
		return
	}

	id, err := h.deps.SubmitReaction(r.Context(), who, eventID, req.Reaction, req.Anonymous)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submissionResponse{SubmissionID: id})
}

// HandleSubmitText handles POST /events/{id}/feedback/text requests.
func (h *FeedbackHandler) HandleSubmitText(w http.ResponseWriter, r *http.Request) {
	who, eventID, ok := h.prepare(w, r)
	if !ok {
		return
	}

	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if req.Text == "" || len(req.Text) > h.limits.MaxTextLen {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: text must be 1-%d characters", ErrBadRequest, h.limits.MaxTextLen))
		return
	}

	id, err := h.deps.SubmitText(r.Context(), who, eventID, req.Text, req.Anonymous)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submissionResponse{SubmissionID: id})
}

// prepare extracts the caller and event id shared by all submission routes.
func (h *FeedbackHandler) prepare(w http.ResponseWriter, r *http.Request) (string, uint64, bool) {
	who, err := caller(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_caller", err)
		return "", 0, false
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return "", 0, false
	}
	return who, eventID, true
}
