// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"

	"github.com/okian/pulse/internal/domain/model"
)

// QueriesHandler serves the read-only projections.
type QueriesHandler struct {
	deps Dependencies
}

// NewQueriesHandler creates a new queries handler.
func NewQueriesHandler(deps Dependencies) *QueriesHandler {
	return &QueriesHandler{deps: deps}
}

// eventResponse mirrors the stored event configuration.
type eventResponse struct {
	EventID          uint64   `json:"event_id"`
	Creator          string   `json:"creator"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	StartHeight      uint64   `json:"start_height"`
	EndHeight        uint64   `json:"end_height"`
	FeedbackKinds    []string `json:"feedback_kinds"`
	MinRating        uint64   `json:"min_rating"`
	MaxRating        uint64   `json:"max_rating"`
	RequiresAuth     bool     `json:"requires_auth"`
	IncentiveEnabled bool     `json:"incentive_enabled"`
	Closed           bool     `json:"closed"`
}

// submissionView projects a submission for consumers. The submitter is
// omitted when the submission was marked anonymous; the identity stays in
// storage, anonymity is presentation only.
type submissionView struct {
	EventID      uint64  `json:"event_id"`
	SubmissionID uint64  `json:"submission_id"`
	Submitter    string  `json:"submitter,omitempty"`
	Kind         string  `json:"kind"`
	Rating       *uint64 `json:"rating,omitempty"`
	Reaction     *string `json:"reaction,omitempty"`
	Text         *string `json:"text,omitempty"`
	Height       uint64  `json:"height"`
	Anonymous    bool    `json:"anonymous"`
}

func newSubmissionView(sub model.Submission) submissionView {
	v := submissionView{
		EventID:      sub.EventID,
		SubmissionID: sub.ID,
		Submitter:    sub.Submitter,
		Kind:         sub.Kind,
		Rating:       sub.Rating,
		Reaction:     sub.Reaction,
		Text:         sub.Text,
		Height:       sub.Height,
		Anonymous:    sub.Anonymous,
	}
	if sub.Anonymous {
		v.Submitter = ""
	}
	return v
}

// HandleGetEvent handles GET /events/{id} requests.
func (h *QueriesHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	ev, err := h.deps.GetEvent(r.Context(), eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{
		EventID:          ev.ID,
		Creator:          ev.Creator,
		Title:            ev.Title,
		Description:      ev.Description,
		StartHeight:      ev.StartHeight,
		EndHeight:        ev.EndHeight,
		FeedbackKinds:    ev.FeedbackKinds,
		MinRating:        ev.MinRating,
		MaxRating:        ev.MaxRating,
		RequiresAuth:     ev.RequiresAuth,
		IncentiveEnabled: ev.IncentiveEnabled,
		Closed:           ev.Closed,
	})
}

// HandleGetEventCount handles GET /events/count requests.
func (h *QueriesHandler) HandleGetEventCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint64{
		"count":  h.deps.GetEventCount(r.Context()),
		"height": h.deps.CurrentHeight(r.Context()),
	})
}

// HandleGetSubmission handles GET /events/{id}/feedback/{sid} requests.
func (h *QueriesHandler) HandleGetSubmission(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	subID, err := pathID(r, "sid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	sub, err := h.deps.GetSubmission(r.Context(), eventID, subID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubmissionView(sub))
}

// HandleGetSubmissionCount handles GET /events/{id}/feedback/count requests.
func (h *QueriesHandler) HandleGetSubmissionCount(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"count": h.deps.GetSubmissionCount(r.Context(), eventID)})
}

type ratingStatsResponse struct {
	Count     uint64            `json:"count"`
	Sum       uint64            `json:"sum"`
	Histogram map[uint64]uint64 `json:"histogram"`
}

// HandleGetRatingStats handles GET /events/{id}/stats requests. Events
// without accepted ratings report an empty aggregate rather than an error.
func (h *QueriesHandler) HandleGetRatingStats(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	agg, ok := h.deps.GetRatingStats(r.Context(), eventID)
	if !ok {
		writeJSON(w, http.StatusOK, ratingStatsResponse{Histogram: map[uint64]uint64{}})
		return
	}
	writeJSON(w, http.StatusOK, ratingStatsResponse{
		Count:     agg.Count,
		Sum:       agg.Sum,
		Histogram: agg.Histogram,
	})
}

type averageResponse struct {
	Average *float64 `json:"average"`
}

// HandleGetAverage handles GET /events/{id}/average requests. A null
// average means no rating has been accepted yet.
func (h *QueriesHandler) HandleGetAverage(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	avg, ok := h.deps.GetAverageRating(r.Context(), eventID)
	if !ok {
		writeJSON(w, http.StatusOK, averageResponse{})
		return
	}
	writeJSON(w, http.StatusOK, averageResponse{Average: &avg})
}

// HandleHasSubmitted handles GET /events/{id}/submitted requests with
// participant and kind query parameters.
func (h *QueriesHandler) HandleHasSubmitted(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	participant := r.URL.Query().Get("participant")
	kind := r.URL.Query().Get("kind")
	if participant == "" || kind == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: participant and kind query parameters required", ErrBadRequest))
		return
	}

	submitted := h.deps.HasParticipantSubmitted(r.Context(), eventID, participant, kind)
	writeJSON(w, http.StatusOK, map[string]bool{"submitted": submitted})
}

type grantResponse struct {
	EventID     uint64 `json:"event_id"`
	Participant string `json:"participant"`
	Allowed     bool   `json:"allowed"`
}

// HandleGetGrant handles GET /events/{id}/participants/{participant}
// requests. Revoked grants are returned with allowed=false; only grants
// that were never written report 404.
func (h *QueriesHandler) HandleGetGrant(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	participant := r.PathValue("participant")

	g, ok := h.deps.GetGrant(r.Context(), eventID, participant)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("no grant for %q", participant))
		return
	}
	writeJSON(w, http.StatusOK, grantResponse{
		EventID:     g.EventID,
		Participant: g.Participant,
		Allowed:     g.Allowed,
	})
}
