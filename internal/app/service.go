// Package service provides the rating aggregation and leaderboard
// engine behind the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	repository "github.com/classrank/classrank/internal/adapters/repository"
	"github.com/classrank/classrank/internal/domain/aggregate"
	"github.com/classrank/classrank/internal/domain/model"
	"github.com/classrank/classrank/internal/domain/rank"
	"github.com/classrank/classrank/internal/domain/week"
	"github.com/classrank/classrank/internal/roster"
	"github.com/classrank/classrank/pkg/logger"
	"github.com/classrank/classrank/pkg/metrics"
)

// Mode selects which view of a teacher's popularity is computed.
type Mode string

const (
	// ModeWeekly is the deduplicated, minimum-sample-gated weekly view.
	ModeWeekly Mode = "weekly"
	// ModeAllTime is the ungated view over the append-only event ledger.
	ModeAllTime Mode = "all_time"
)

// ParseMode reads a view mode from its wire form.
func ParseMode(s string) (Mode, error) {
	switch s {
	case string(ModeWeekly):
		return ModeWeekly, nil
	case string(ModeAllTime):
		return ModeAllTime, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Service implements the engine operations behind the HTTP API: submit
// a rating, read a teacher's aggregate view, serve leaderboards, and
// write week snapshots at rollover.
type Service struct {
	mu sync.RWMutex

	// Core components
	ledger    repository.Ledger
	snapshots repository.Snapshots
	directory roster.Directory

	// Configuration
	minWeeklySample int
	shardCount      int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDirectory sets the teacher roster used to validate submissions.
func WithDirectory(d roster.Directory) Option {
	return func(s *Service) {
		if d != nil {
			s.directory = d
		}
	}
}

// WithMinWeeklySample sets the weekly display gate.
func WithMinWeeklySample(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minWeeklySample = n
		}
	}
}

// WithShardCount sets the number of shards in the submission ledger.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		minWeeklySample: aggregate.DefaultMinWeeklySample,
		shardCount:      8,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the engine's stores.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting rating engine...")

	s.ledger = repository.NewMemoryLedger(repository.WithShardCount(s.shardCount))
	s.snapshots = repository.NewMemorySnapshots()
	if s.directory == nil {
		s.directory = roster.NewInMemoryDirectory()
	}

	s.started = true
	s.logger.Info(ctx, "rating engine started",
		logger.Int("minWeeklySample", s.minWeeklySample),
		logger.Int("shardCount", s.shardCount),
	)

	return nil
}

// Stop shuts the engine down. The in-memory stores need no teardown;
// the flag flips so a stopped service refuses work.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "rating engine stopped")
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// SubmitRating records a 1-5 star rating for a teacher. The weekly
// record for (teacher, submitter, current week) is upserted; only a
// first-of-week submission appends to the all-time ledger. Returns true
// when an existing weekly record was overwritten. The submission either
// fully applies or fully fails.
func (s *Service) SubmitRating(ctx context.Context, teacherID string, stars int, submitterID string, now time.Time) (bool, error) {
	if err := s.running(); err != nil {
		return false, err
	}
	switch {
	case teacherID == "":
		metrics.RecordRatingRejected("validation")
		return false, ErrInvalidTeacherID
	case submitterID == "":
		metrics.RecordRatingRejected("validation")
		return false, ErrInvalidSubmitterID
	case !model.ValidStars(stars):
		metrics.RecordRatingRejected("validation")
		return false, fmt.Errorf("%w: got %d", ErrInvalidStars, stars)
	}

	if _, err := s.directory.Lookup(ctx, teacherID); err != nil {
		switch err {
		case roster.ErrTeacherNotFound:
			metrics.RecordRatingRejected("not_found")
		case roster.ErrTeacherInactive:
			metrics.RecordRatingRejected("inactive")
		}
		return false, err
	}

	weekStart := week.Start(now)
	if s.snapshots.Has(ctx, weekStart) {
		// A stale timestamp landed in a week that already rolled over.
		// The snapshot is immutable; the submission is refused rather
		// than silently rewriting history.
		metrics.RecordRatingRejected("week_closed")
		return false, fmt.Errorf("%w: %s", ErrWeekClosed, week.Format(weekStart))
	}
	updated, err := s.ledger.Record(ctx, model.WeeklyRating{
		TeacherID:   teacherID,
		SubmitterID: submitterID,
		WeekStart:   weekStart,
		Stars:       stars,
		UpdatedAt:   now,
	})
	if err != nil {
		return false, err
	}

	if updated {
		metrics.RecordRatingUpdated()
	} else {
		metrics.RecordRatingAccepted()
	}
	s.logger.Debug(ctx, "rating recorded",
		logger.String("teacherID", teacherID),
		logger.Int("stars", stars),
		logger.Time("weekStart", weekStart),
		logger.Bool("updatedExisting", updated),
	)
	return updated, nil
}

// TeacherView returns a teacher's count/average for one view mode. The
// weekly view is always recomputed from the current week's live records
// and withholds the average below the minimum sample; the all-time view
// has no gate. An inactive teacher's views remain readable.
func (s *Service) TeacherView(ctx context.Context, teacherID string, mode Mode, now time.Time) (model.TeacherAggregate, error) {
	if err := s.running(); err != nil {
		return model.TeacherAggregate{}, err
	}
	if teacherID == "" {
		return model.TeacherAggregate{}, ErrInvalidTeacherID
	}
	if _, err := s.directory.Lookup(ctx, teacherID); err == roster.ErrTeacherNotFound {
		return model.TeacherAggregate{}, err
	}

	switch mode {
	case ModeWeekly:
		recs, err := s.ledger.TeacherWeek(ctx, teacherID, week.Start(now))
		if err != nil {
			return model.TeacherAggregate{}, err
		}
		return aggregate.Weekly(teacherID, weeklyStars(recs), s.minWeeklySample), nil
	case ModeAllTime:
		events, err := s.ledger.TeacherEvents(ctx, teacherID)
		if err != nil {
			return model.TeacherAggregate{}, err
		}
		return aggregate.AllTime(teacherID, eventStars(events)), nil
	default:
		return model.TeacherAggregate{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// Leaderboard returns up to limit ranked entries. All-time and
// current-week boards are computed live; a past week is served from its
// immutable snapshot. weekStart is ignored for ModeAllTime and defaults
// to the current week for ModeWeekly when zero.
func (s *Service) Leaderboard(ctx context.Context, mode Mode, weekStart time.Time, direction rank.Direction, limit int, now time.Time) ([]rank.Entry, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	switch mode {
	case ModeAllTime:
		metrics.RecordLeaderboardQuery(string(mode), "live")
		return truncate(rank.Rank(s.allTimeEntries(ctx), direction), limit), nil

	case ModeWeekly:
		if weekStart.IsZero() {
			weekStart = week.Start(now)
		}
		if !week.IsStart(weekStart) {
			return nil, ErrInvalidWeekStart
		}
		if week.IsCurrent(weekStart, now) {
			metrics.RecordLeaderboardQuery(string(mode), "live")
			entries, err := s.liveWeekEntries(ctx, weekStart)
			if err != nil {
				return nil, err
			}
			return truncate(rank.Rank(entries, direction), limit), nil
		}

		// Past week: the snapshot is the only source. Aggregates are
		// never recomputed; a bottom read re-orders the frozen tuples.
		rows, err := s.snapshots.Read(ctx, weekStart)
		if err != nil {
			return nil, err
		}
		metrics.RecordLeaderboardQuery(string(mode), "snapshot")
		if direction == rank.Bottom {
			return truncate(rank.Rank(rank.FromSnapshot(rows), rank.Bottom), limit), nil
		}
		entries := make([]rank.Entry, len(rows))
		for i, r := range rows {
			entries[i] = rank.Entry{
				TeacherID:    r.TeacherID,
				Average:      r.AverageRating,
				Count:        r.TotalRatings,
				RankPosition: r.RankPosition,
			}
		}
		return truncate(entries, limit), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// WriteSnapshot freezes a fully elapsed week: it computes each rated
// teacher's weekly aggregate from that week's records, ranks them
// top-first, and writes one immutable row per teacher. The current or a
// future week is refused, as is a week already snapshotted.
func (s *Service) WriteSnapshot(ctx context.Context, weekStart time.Time, now time.Time) (int, error) {
	if err := s.running(); err != nil {
		return 0, err
	}
	if !week.IsStart(weekStart) {
		return 0, ErrInvalidWeekStart
	}
	if week.IsCurrent(weekStart, now) || weekStart.After(week.Start(now)) {
		return 0, fmt.Errorf("%w: %s", ErrWeekOpen, week.Format(weekStart))
	}

	byTeacher, err := s.ledger.Week(ctx, weekStart)
	if err != nil {
		return 0, err
	}

	aggs := make([]model.TeacherAggregate, 0, len(byTeacher))
	for teacherID, recs := range byTeacher {
		aggs = append(aggs, aggregate.Weekly(teacherID, weeklyStars(recs), s.minWeeklySample))
	}
	ranked := rank.Rank(rank.FromAggregates(aggs), rank.Top)

	_, weekEnd := week.Range(weekStart)
	rows := make([]model.WeekSnapshotRow, len(ranked))
	for i, e := range ranked {
		rows[i] = model.WeekSnapshotRow{
			TeacherID:     e.TeacherID,
			WeekStart:     weekStart,
			WeekEnd:       weekEnd,
			TotalRatings:  e.Count,
			AverageRating: e.Average,
			RankPosition:  e.RankPosition,
		}
	}

	if err := s.snapshots.Write(ctx, weekStart, rows); err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "week snapshot written",
		logger.Time("weekStart", weekStart),
		logger.Int("rows", len(rows)),
	)
	return len(rows), nil
}

// SnapshotRows returns the frozen rows for a past week.
func (s *Service) SnapshotRows(ctx context.Context, weekStart time.Time) ([]model.WeekSnapshotRow, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	if !week.IsStart(weekStart) {
		return nil, ErrInvalidWeekStart
	}
	return s.snapshots.Read(ctx, weekStart)
}

// PendingSnapshotWeeks returns elapsed ledger weeks that have no
// snapshot yet, oldest first. The rollover scheduler uses this to
// backfill after downtime.
func (s *Service) PendingSnapshotWeeks(ctx context.Context, now time.Time) []time.Time {
	if err := s.running(); err != nil {
		return nil
	}

	current := week.Start(now)
	var pending []time.Time
	for _, ws := range s.ledger.WeekStarts(ctx) {
		if !ws.Before(current) {
			continue
		}
		if !s.snapshots.Has(ctx, ws) {
			pending = append(pending, ws)
		}
	}
	return pending
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"minWeeklySample": s.minWeeklySample,
		"shardCount":      s.shardCount,
	}

	if s.started {
		weekly := s.ledger.WeeklyCount(ctx)
		events := s.ledger.EventCount(ctx)
		teachers := len(s.ledger.TeacherIDs(ctx))
		snapshotWeeks := len(s.snapshots.Weeks(ctx))

		stats["weeklyRecords"] = weekly
		stats["allTimeEvents"] = events
		stats["teachersTracked"] = teachers
		stats["snapshotWeeks"] = snapshotWeeks

		metrics.UpdateLedgerWeeklyRecords(weekly)
		metrics.UpdateLedgerEventsTotal(events)
		metrics.UpdateTeachersTracked(teachers)
		metrics.UpdateSnapshotWeeksStored(snapshotWeeks)
	}

	return stats
}

// allTimeEntries builds ungated aggregates for every tracked teacher.
func (s *Service) allTimeEntries(ctx context.Context) []rank.Entry {
	ids := s.ledger.TeacherIDs(ctx)
	aggs := make([]model.TeacherAggregate, 0, len(ids))
	for _, id := range ids {
		events, err := s.ledger.TeacherEvents(ctx, id)
		if err != nil {
			continue
		}
		aggs = append(aggs, aggregate.AllTime(id, eventStars(events)))
	}
	return rank.FromAggregates(aggs)
}

// liveWeekEntries builds gated aggregates for every teacher rated in
// the given (current) week.
func (s *Service) liveWeekEntries(ctx context.Context, weekStart time.Time) ([]rank.Entry, error) {
	byTeacher, err := s.ledger.Week(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	aggs := make([]model.TeacherAggregate, 0, len(byTeacher))
	for teacherID, recs := range byTeacher {
		aggs = append(aggs, aggregate.Weekly(teacherID, weeklyStars(recs), s.minWeeklySample))
	}
	return rank.FromAggregates(aggs), nil
}

func truncate(entries []rank.Entry, limit int) []rank.Entry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func weeklyStars(recs []model.WeeklyRating) []int {
	stars := make([]int, len(recs))
	for i, r := range recs {
		stars[i] = r.Stars
	}
	return stars
}

func eventStars(events []model.RatingEvent) []int {
	stars := make([]int, len(events))
	for i, e := range events {
		stars[i] = e.Stars
	}
	return stars
}
