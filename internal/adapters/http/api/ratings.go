// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// ratingRequest is the POST /ratings wire shape.
type ratingRequest struct {
	TeacherID   string `json:"teacher_id"`
	Stars       int    `json:"stars"`
	SubmitterID string `json:"submitter_id"`
}

func (r ratingRequest) validate() error {
	if r.TeacherID == "" {
		return errors.New("teacher_id is required")
	}
	if r.SubmitterID == "" {
		return errors.New("submitter_id is required")
	}
	if r.Stars < 1 || r.Stars > 5 {
		return errors.New("stars must be between 1 and 5")
	}
	return nil
}

// ratingResponse acknowledges a recorded rating. WeeklyUpdated is true
// when the submitter had already rated this teacher in the current week
// and the record was overwritten.
type ratingResponse struct {
	Status        string `json:"status"`
	WeeklyUpdated bool   `json:"weekly_updated"`
}

// RatingsHandler handles rating submissions.
type RatingsHandler struct {
	deps Dependencies
	now  func() time.Time
}

// NewRatingsHandler creates a new ratings handler.
func NewRatingsHandler(deps Dependencies, now func() time.Time) *RatingsHandler {
	return &RatingsHandler{deps: deps, now: now}
}

// HandlePostRating handles POST /ratings requests.
func (h *RatingsHandler) HandlePostRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_rating"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	updated, err := h.deps.SubmitRating(r.Context(), req.TeacherID, req.Stars, req.SubmitterID, h.now())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	status := "recorded"
	if updated {
		status = "updated"
	}
	writeJSON(w, http.StatusOK, ratingResponse{Status: status, WeeklyUpdated: updated})
}
