// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"time"

	service "github.com/classrank/classrank/internal/app"
	"github.com/classrank/classrank/internal/domain/rank"
	"github.com/classrank/classrank/internal/domain/week"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     Dependencies
	maxLimit int
	now      func() time.Time
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies, maxLimit int, now func() time.Time) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
		now:      now,
	}
}

// HandleGetLeaderboard handles
// GET /leaderboard?mode=&direction=&limit=N&week_start=YYYY-MM-DD.
// Mode defaults to weekly and week_start to the current week; a past
// week_start is served from its frozen snapshot.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	limitStr := q.Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	mode := service.ModeWeekly
	if raw := q.Get("mode"); raw != "" {
		mode, err = service.ParseMode(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	direction, err := rank.ParseDirection(q.Get("direction"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	var weekStart time.Time
	if raw := q.Get("week_start"); raw != "" {
		weekStart, err = week.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	entries, err := h.deps.Leaderboard(r.Context(), mode, weekStart, direction, n, h.now())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
