package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	repository "github.com/classrank/classrank/internal/adapters/repository"
	"github.com/classrank/classrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var weekA = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
var weekB = time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)

func weeklyAt(teacher, submitter string, stars int, weekStart time.Time) model.WeeklyRating {
	return model.WeeklyRating{
		TeacherID:   teacher,
		SubmitterID: submitter,
		WeekStart:   weekStart,
		Stars:       stars,
		UpdatedAt:   weekStart.Add(24 * time.Hour),
	}
}

func TestMemoryLedger_Record(t *testing.T) {
	Convey("Given an empty ledger", t, func() {
		ledger := repository.NewMemoryLedger()
		ctx := context.Background()

		Convey("When a submitter rates a teacher for the first time in a week", func() {
			updated, err := ledger.Record(ctx, weeklyAt("t1", "s1", 5, weekA))

			Convey("Then a weekly record and an all-time event both exist", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeFalse)
				So(ledger.WeeklyCount(ctx), ShouldEqual, 1)
				So(ledger.EventCount(ctx), ShouldEqual, 1)

				events, err := ledger.TeacherEvents(ctx, "t1")
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 1)
				So(events[0].Stars, ShouldEqual, 5)
				So(events[0].ID, ShouldNotBeEmpty)
			})
		})

		Convey("When the same submitter resubmits within the week", func() {
			_, err := ledger.Record(ctx, weeklyAt("t1", "s1", 5, weekA))
			So(err, ShouldBeNil)
			updated, err := ledger.Record(ctx, weeklyAt("t1", "s1", 2, weekA))

			Convey("Then the weekly record holds the last value", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeTrue)

				recs, err := ledger.TeacherWeek(ctx, "t1", weekA)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Stars, ShouldEqual, 2)
			})

			Convey("And the all-time ledger keeps the first-of-week value only", func() {
				events, err := ledger.TeacherEvents(ctx, "t1")
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 1)
				So(events[0].Stars, ShouldEqual, 5)
			})
		})

		Convey("When the same submitter rates again in the next week", func() {
			_, err := ledger.Record(ctx, weeklyAt("t1", "s1", 5, weekA))
			So(err, ShouldBeNil)
			updated, err := ledger.Record(ctx, weeklyAt("t1", "s1", 3, weekB))

			Convey("Then a second weekly record and a second event exist", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeFalse)
				So(ledger.WeeklyCount(ctx), ShouldEqual, 2)
				So(ledger.EventCount(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the key is empty", func() {
			_, err := ledger.Record(ctx, weeklyAt("", "s1", 3, weekA))

			Convey("Then the write is rejected", func() {
				So(err, ShouldEqual, repository.ErrEmptyKey)
			})
		})
	})
}

func TestMemoryLedger_Reads(t *testing.T) {
	Convey("Given a populated ledger", t, func() {
		ledger := repository.NewMemoryLedger(repository.WithShardCount(4))
		ctx := context.Background()

		for i, stars := range []int{4, 4, 4} {
			_, err := ledger.Record(ctx, weeklyAt("t1", fmt.Sprintf("s%d", i), stars, weekA))
			So(err, ShouldBeNil)
		}
		_, err := ledger.Record(ctx, weeklyAt("t2", "s0", 2, weekA))
		So(err, ShouldBeNil)
		_, err = ledger.Record(ctx, weeklyAt("t2", "s0", 5, weekB))
		So(err, ShouldBeNil)

		Convey("Then TeacherWeek filters by teacher and week", func() {
			recs, err := ledger.TeacherWeek(ctx, "t1", weekA)
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 3)

			recs, err = ledger.TeacherWeek(ctx, "t1", weekB)
			So(err, ShouldBeNil)
			So(recs, ShouldBeEmpty)
		})

		Convey("Then Week groups by teacher", func() {
			byTeacher, err := ledger.Week(ctx, weekA)
			So(err, ShouldBeNil)
			So(byTeacher, ShouldHaveLength, 2)
			So(byTeacher["t1"], ShouldHaveLength, 3)
			So(byTeacher["t2"], ShouldHaveLength, 1)
		})

		Convey("Then TeacherIDs lists tracked teachers sorted", func() {
			So(ledger.TeacherIDs(ctx), ShouldResemble, []string{"t1", "t2"})
		})

		Convey("Then WeekStarts lists distinct weeks oldest first", func() {
			So(ledger.WeekStarts(ctx), ShouldResemble, []time.Time{weekA, weekB})
		})
	})
}

func TestMemoryLedger_ConcurrentSameKey(t *testing.T) {
	Convey("Given concurrent submissions for one (teacher, submitter, week) key", t, func() {
		ledger := repository.NewMemoryLedger()
		ctx := context.Background()

		const attempts = 64
		var wg sync.WaitGroup
		var firsts atomic64

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(stars int) {
				defer wg.Done()
				updated, err := ledger.Record(ctx, weeklyAt("t1", "s1", stars%5+1, weekA))
				if err == nil && !updated {
					firsts.inc()
				}
			}(i)
		}
		wg.Wait()

		Convey("Then exactly one submission observed 'no existing record'", func() {
			So(firsts.load(), ShouldEqual, 1)
		})

		Convey("And exactly one event and one weekly record exist", func() {
			So(ledger.EventCount(ctx), ShouldEqual, 1)
			So(ledger.WeeklyCount(ctx), ShouldEqual, 1)

			recs, err := ledger.TeacherWeek(ctx, "t1", weekA)
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
		})
	})

	Convey("Given concurrent submissions for independent keys", t, func() {
		ledger := repository.NewMemoryLedger()
		ctx := context.Background()

		const submitters = 50
		var wg sync.WaitGroup
		for i := 0; i < submitters; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, _ = ledger.Record(ctx, weeklyAt("t1", fmt.Sprintf("s%d", n), n%5+1, weekA))
			}(i)
		}
		wg.Wait()

		Convey("Then every submitter produced one record and one event", func() {
			So(ledger.WeeklyCount(ctx), ShouldEqual, submitters)
			So(ledger.EventCount(ctx), ShouldEqual, submitters)
		})
	})
}

// atomic64 is a tiny test helper counter.
type atomic64 struct {
	mu sync.Mutex
	n  int
}

func (a *atomic64) inc() {
	a.mu.Lock()
	a.n++
	a.mu.Unlock()
}

func (a *atomic64) load() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.n
}
