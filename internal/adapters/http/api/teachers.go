// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
	"time"

	service "github.com/classrank/classrank/internal/app"
)

// teacherRatingResponse is the GET /teachers/{id}/rating wire shape.
// Average is null while the weekly sample is below the display minimum.
type teacherRatingResponse struct {
	TeacherID string   `json:"teacher_id"`
	Mode      string   `json:"mode"`
	Count     int      `json:"count"`
	Average   *float64 `json:"average"`
}

// TeachersHandler handles per-teacher rating views.
type TeachersHandler struct {
	deps Dependencies
	now  func() time.Time
}

// NewTeachersHandler creates a new teachers handler.
func NewTeachersHandler(deps Dependencies, now func() time.Time) *TeachersHandler {
	return &TeachersHandler{deps: deps, now: now}
}

// HandleGetRatingView handles GET /teachers/{id}/rating requests. The
// mode query parameter selects the weekly (default) or all_time view.
func (h *TeachersHandler) HandleGetRatingView(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_teacher_rating"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/teachers/")
	teacherID, tail, found := strings.Cut(rest, "/")
	if !found || tail != "rating" || teacherID == "" {
		http.NotFound(w, r)
		return
	}

	mode := service.ModeWeekly
	if raw := r.URL.Query().Get("mode"); raw != "" {
		parsed, err := service.ParseMode(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		mode = parsed
	}

	agg, err := h.deps.TeacherView(r.Context(), teacherID, mode, h.now())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, teacherRatingResponse{
		TeacherID: agg.TeacherID,
		Mode:      string(mode),
		Count:     agg.Count,
		Average:   agg.Average,
	})
}
