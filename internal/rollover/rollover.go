// Package rollover runs the optional in-process weekly snapshot
// trigger. Deployments that drive POST /snapshots from an external cron
// leave this disabled; enabling it makes the service self-contained.
package rollover

import (
	"context"
	"errors"
	"time"

	repository "github.com/classrank/classrank/internal/adapters/repository"
	"github.com/classrank/classrank/internal/domain/week"
	"github.com/classrank/classrank/pkg/logger"
)

// Snapshotter is the slice of the engine the scheduler needs.
type Snapshotter interface {
	WriteSnapshot(ctx context.Context, weekStart time.Time, now time.Time) (int, error)
	PendingSnapshotWeeks(ctx context.Context, now time.Time) []time.Time
}

// defaultCheckInterval bounds how late after the boundary a snapshot
// can fire when the process slept through it.
const defaultCheckInterval = time.Minute

// Scheduler fires WriteSnapshot shortly after each week boundary and
// backfills weeks missed while the process was down.
type Scheduler struct {
	engine        Snapshotter
	grace         time.Duration
	checkInterval time.Duration
	clock         func() time.Time
	logger        logger.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithGrace delays the trigger past the Monday boundary.
func WithGrace(grace time.Duration) Option {
	return func(s *Scheduler) {
		if grace >= 0 {
			s.grace = grace
		}
	}
}

// WithCheckInterval sets how often the scheduler looks for due weeks.
func WithCheckInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.checkInterval = interval
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Scheduler around the engine.
func New(engine Snapshotter, opts ...Option) *Scheduler {
	s := &Scheduler{
		engine:        engine,
		grace:         5 * time.Minute,
		checkInterval: defaultCheckInterval,
		clock:         time.Now,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("rollover")
	}
	return s
}

// Start launches the scheduler loop. It returns immediately; Stop waits
// for the loop to drain.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop signals the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh:
		// Already stopped.
	default:
		close(s.stopCh)
	}
	<-s.doneCh
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	// One pass at startup so downtime across a boundary is repaired
	// without waiting for the first tick.
	s.snapshotDue(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.snapshotDue(ctx)
		}
	}
}

// snapshotDue writes every elapsed, unsnapshotted week whose grace
// period has passed, oldest first.
func (s *Scheduler) snapshotDue(ctx context.Context) {
	now := s.clock()
	if now.Before(week.Start(now).Add(s.grace)) {
		// Inside the grace window after a boundary; let stragglers with
		// slightly behind clocks land in the closing week first.
		return
	}

	for _, ws := range s.engine.PendingSnapshotWeeks(ctx, now) {
		rows, err := s.engine.WriteSnapshot(ctx, ws, now)
		switch {
		case err == nil:
			s.logger.Info(ctx, "rollover snapshot written",
				logger.Time("weekStart", ws),
				logger.Int("rows", rows),
			)
		case errors.Is(err, repository.ErrSnapshotExists):
			// Lost a race with a concurrent external trigger; the
			// existing snapshot stands.
			s.logger.Debug(ctx, "rollover snapshot already written", logger.Time("weekStart", ws))
		default:
			s.logger.Error(ctx, "rollover snapshot failed",
				logger.Time("weekStart", ws),
				logger.Error(err),
			)
		}
	}
}
