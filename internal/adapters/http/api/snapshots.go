// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/classrank/classrank/internal/domain/model"
	"github.com/classrank/classrank/internal/domain/week"
)

// snapshotRequest is the POST /snapshots wire shape.
type snapshotRequest struct {
	WeekStart string `json:"week_start"`
}

// snapshotWrittenResponse acknowledges a frozen week.
type snapshotWrittenResponse struct {
	WeekStart string `json:"week_start"`
	Rows      int    `json:"rows"`
}

// snapshotRow is the frozen per-teacher tuple as served on the wire.
type snapshotRow struct {
	TeacherID     string   `json:"teacher_id"`
	WeekStart     string   `json:"week_start"`
	WeekEnd       string   `json:"week_end"`
	TotalRatings  int      `json:"total_ratings"`
	AverageRating *float64 `json:"average_rating"`
	RankPosition  int      `json:"rank_position"`
}

func toWireRows(rows []model.WeekSnapshotRow) []snapshotRow {
	out := make([]snapshotRow, len(rows))
	for i, r := range rows {
		out[i] = snapshotRow{
			TeacherID:     r.TeacherID,
			WeekStart:     week.Format(r.WeekStart),
			WeekEnd:       r.WeekEnd.UTC().Format("2006-01-02"),
			TotalRatings:  r.TotalRatings,
			AverageRating: r.AverageRating,
			RankPosition:  r.RankPosition,
		}
	}
	return out
}

// SnapshotsHandler handles snapshot writes and reads.
type SnapshotsHandler struct {
	deps Dependencies
	now  func() time.Time
}

// NewSnapshotsHandler creates a new snapshots handler.
func NewSnapshotsHandler(deps Dependencies, now func() time.Time) *SnapshotsHandler {
	return &SnapshotsHandler{deps: deps, now: now}
}

// HandlePostSnapshot handles POST /snapshots requests. It freezes the
// given elapsed week; a repeat write for the same week is a conflict.
func (h *SnapshotsHandler) HandlePostSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_snapshot"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	weekStart, err := week.Parse(req.WeekStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	rows, err := h.deps.WriteSnapshot(r.Context(), weekStart, h.now())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshotWrittenResponse{
		WeekStart: week.Format(weekStart),
		Rows:      rows,
	})
}

// HandleGetSnapshot handles GET /snapshots/{week_start} requests.
func (h *SnapshotsHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_snapshot"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/snapshots/")
	if raw == "" || strings.Contains(raw, "/") {
		http.NotFound(w, r)
		return
	}
	weekStart, err := week.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	rows, err := h.deps.SnapshotRows(r.Context(), weekStart)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWireRows(rows))
}
