// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ParticipantsHandler handles authorization registry requests.
type ParticipantsHandler struct {
	deps Dependencies
}

// NewParticipantsHandler creates a new participants handler.
func NewParticipantsHandler(deps Dependencies) *ParticipantsHandler {
	return &ParticipantsHandler{deps: deps}
}

type addParticipantRequest struct {
	Participant string `json:"participant"`
}

// HandleAddParticipant handles POST /events/{id}/participants requests.
func (h *ParticipantsHandler) HandleAddParticipant(w http.ResponseWriter, r *http.Request) {
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

	var req addParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Participant) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing participant", ErrBadRequest))
		return
	}

	if err := h.deps.AddParticipant(r.Context(), who, eventID, req.Participant); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// HandleRemoveParticipant handles DELETE /events/{id}/participants/{participant}
// requests. Removal writes allowed=false; the grant entry itself persists.
func (h *ParticipantsHandler) HandleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
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
	participant := r.PathValue("participant")

	if err := h.deps.RemoveParticipant(r.Context(), who, eventID, participant); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
