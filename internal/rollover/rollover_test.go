package rollover_test

import (
	"context"
	"sync"
	"testing"
	"time"

	repository "github.com/classrank/classrank/internal/adapters/repository"
	"github.com/classrank/classrank/internal/rollover"
	"github.com/classrank/classrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeEngine records snapshot calls.
type fakeEngine struct {
	mu      sync.Mutex
	pending []time.Time
	written []time.Time
	err     error
}

func (f *fakeEngine) WriteSnapshot(ctx context.Context, weekStart time.Time, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.written = append(f.written, weekStart)
	// Written weeks are no longer pending.
	var rest []time.Time
	for _, ws := range f.pending {
		if !ws.Equal(weekStart) {
			rest = append(rest, ws)
		}
	}
	f.pending = rest
	return 1, nil
}

func (f *fakeEngine) PendingSnapshotWeeks(ctx context.Context, now time.Time) []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Time, len(f.pending))
	copy(out, f.pending)
	return out
}

func (f *fakeEngine) writtenWeeks() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Time, len(f.written))
	copy(out, f.written)
	return out
}

var (
	lastWeek = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	thisWeek = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
)

func runScheduler(engine *fakeEngine, now time.Time) {
	s := rollover.New(engine,
		rollover.WithGrace(10*time.Minute),
		rollover.WithCheckInterval(time.Hour),
		rollover.WithClock(func() time.Time { return now }),
	)
	s.Start(context.Background())
	// The startup pass runs immediately; stop right after it drains.
	time.Sleep(50 * time.Millisecond)
	s.Stop()
}

func TestScheduler(t *testing.T) {
	Convey("Given a pending elapsed week past the grace period", t, func() {
		engine := &fakeEngine{pending: []time.Time{lastWeek}}
		now := thisWeek.Add(30 * time.Minute)

		Convey("When the scheduler runs", func() {
			runScheduler(engine, now)

			Convey("Then the week is snapshotted", func() {
				So(engine.writtenWeeks(), ShouldResemble, []time.Time{lastWeek})
			})
		})
	})

	Convey("Given the boundary just passed but grace has not elapsed", t, func() {
		engine := &fakeEngine{pending: []time.Time{lastWeek}}
		now := thisWeek.Add(2 * time.Minute)

		Convey("When the scheduler runs", func() {
			runScheduler(engine, now)

			Convey("Then nothing is written yet", func() {
				So(engine.writtenWeeks(), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a backlog of missed weeks", t, func() {
		weekMinus2 := lastWeek.AddDate(0, 0, -7)
		engine := &fakeEngine{pending: []time.Time{weekMinus2, lastWeek}}
		now := thisWeek.Add(time.Hour)

		Convey("When the scheduler runs", func() {
			runScheduler(engine, now)

			Convey("Then both weeks are written, oldest first", func() {
				So(engine.writtenWeeks(), ShouldResemble, []time.Time{weekMinus2, lastWeek})
			})
		})
	})

	Convey("Given the snapshot already exists", t, func() {
		engine := &fakeEngine{
			pending: []time.Time{lastWeek},
			err:     repository.ErrSnapshotExists,
		}
		now := thisWeek.Add(time.Hour)

		Convey("When the scheduler runs", func() {
			Convey("Then the conflict is tolerated", func() {
				So(func() { runScheduler(engine, now) }, ShouldNotPanic)
				So(engine.writtenWeeks(), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a started scheduler", t, func() {
		engine := &fakeEngine{}
		s := rollover.New(engine,
			rollover.WithClock(func() time.Time { return thisWeek.Add(time.Hour) }),
			rollover.WithCheckInterval(10*time.Millisecond),
		)
		s.Start(context.Background())

		Convey("When stopping it twice", func() {
			Convey("Then Stop is idempotent", func() {
				So(func() { s.Stop(); s.Stop() }, ShouldNotPanic)
			})
		})
	})
}
