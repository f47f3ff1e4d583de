// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	repository "github.com/classrank/classrank/internal/adapters/repository"
	service "github.com/classrank/classrank/internal/app"
	"github.com/classrank/classrank/internal/domain/model"
	"github.com/classrank/classrank/internal/domain/rank"
	"github.com/classrank/classrank/internal/roster"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	SubmitRating(ctx context.Context, teacherID string, stars int, submitterID string, now time.Time) (bool, error)
	TeacherView(ctx context.Context, teacherID string, mode service.Mode, now time.Time) (model.TeacherAggregate, error)
	Leaderboard(ctx context.Context, mode service.Mode, weekStart time.Time, direction rank.Direction, limit int, now time.Time) ([]rank.Entry, error)
	WriteSnapshot(ctx context.Context, weekStart time.Time, now time.Time) (int, error)
	SnapshotRows(ctx context.Context, weekStart time.Time) ([]model.WeekSnapshotRow, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = rank.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	ratingsHandler     *RatingsHandler
	teachersHandler    *TeachersHandler
	leaderboardHandler *LeaderboardHandler
	snapshotsHandler   *SnapshotsHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxLeaderboardLimit int
	now                 func() time.Time
}

// WithMaxLeaderboardLimit caps GET /leaderboard?limit.
func WithMaxLeaderboardLimit(limit int) ServerOption {
	return func(c *serverConfig) {
		if limit > 0 {
			c.maxLeaderboardLimit = limit
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) ServerOption {
	return func(c *serverConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := &serverConfig{
		maxLeaderboardLimit: 100,
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		ratingsHandler:     NewRatingsHandler(deps, cfg.now),
		teachersHandler:    NewTeachersHandler(deps, cfg.now),
		leaderboardHandler: NewLeaderboardHandler(deps, cfg.maxLeaderboardLimit, cfg.now),
		snapshotsHandler:   NewSnapshotsHandler(deps, cfg.now),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/ratings", MetricsMiddleware(s.ratingsHandler.HandlePostRating, "ratings"))
	mux.HandleFunc("/teachers/", MetricsMiddleware(s.teachersHandler.HandleGetRatingView, "teachers"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/snapshots", MetricsMiddleware(s.snapshotsHandler.HandlePostSnapshot, "snapshots"))
	mux.HandleFunc("/snapshots/", MetricsMiddleware(s.snapshotsHandler.HandleGetSnapshot, "snapshots"))
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

// writeEngineError translates engine sentinels to their HTTP shape:
// validation 400, not-found 404, conflict 409, invalid-state 422.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStars),
		errors.Is(err, service.ErrInvalidTeacherID),
		errors.Is(err, service.ErrInvalidSubmitterID),
		errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrInvalidWeekStart),
		errors.Is(err, service.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "validation_error", err)
	case errors.Is(err, roster.ErrTeacherNotFound),
		errors.Is(err, repository.ErrSnapshotNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrSnapshotExists):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, roster.ErrTeacherInactive),
		errors.Is(err, service.ErrWeekOpen),
		errors.Is(err, service.ErrWeekClosed):
		writeError(w, http.StatusUnprocessableEntity, "invalid_state", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
