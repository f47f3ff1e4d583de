package week_test

import (
	"testing"
	"time"

	"github.com/classrank/classrank/internal/domain/week"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStart(t *testing.T) {
	Convey("Given timestamps across a single week", t, func() {
		monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

		Convey("When the timestamp is Monday midnight", func() {
			So(week.Start(monday), ShouldEqual, monday)
		})

		Convey("When the timestamp is mid-Monday", func() {
			now := time.Date(2025, 3, 10, 15, 42, 7, 0, time.UTC)
			So(week.Start(now), ShouldEqual, monday)
		})

		Convey("When the timestamp is Wednesday", func() {
			now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
			So(week.Start(now), ShouldEqual, monday)
		})

		Convey("When the timestamp is Sunday just before rollover", func() {
			now := time.Date(2025, 3, 16, 23, 59, 59, 0, time.UTC)
			So(week.Start(now), ShouldEqual, monday)
		})

		Convey("When the timestamp is the following Monday", func() {
			now := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
			So(week.Start(now), ShouldEqual, monday.AddDate(0, 0, 7))
		})
	})

	Convey("Given a timestamp in a non-UTC zone", t, func() {
		zone := time.FixedZone("UTC+5", 5*3600)
		// 02:00 Monday in UTC+5 is still Sunday 21:00 UTC.
		now := time.Date(2025, 3, 10, 2, 0, 0, 0, zone)

		Convey("Then the week is resolved in UTC", func() {
			So(week.Start(now), ShouldEqual, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
		})
	})
}

func TestRange(t *testing.T) {
	Convey("Given a week start", t, func() {
		start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

		Convey("When computing its range", func() {
			s, e := week.Range(start)

			Convey("Then the span is seven inclusive days", func() {
				So(s, ShouldEqual, start)
				So(e, ShouldEqual, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC))
				So(e.Weekday(), ShouldEqual, time.Sunday)
			})
		})
	})
}

func TestIsCurrent(t *testing.T) {
	Convey("Given the current week start", t, func() {
		now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
		current := week.Start(now)

		Convey("Then the current week is current", func() {
			So(week.IsCurrent(current, now), ShouldBeTrue)
		})

		Convey("Then the previous week is not current", func() {
			So(week.IsCurrent(week.Previous(now), now), ShouldBeFalse)
		})

		Convey("Then the next week is not current", func() {
			So(week.IsCurrent(week.Next(current), now), ShouldBeFalse)
		})
	})
}

func TestPrevious(t *testing.T) {
	Convey("Given a mid-week timestamp", t, func() {
		now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

		Convey("Then Previous returns the Monday before the current one", func() {
			So(week.Previous(now), ShouldEqual, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
		})
	})
}

func TestIsStart(t *testing.T) {
	Convey("Given candidate week identifiers", t, func() {
		Convey("A Monday at UTC midnight is a valid start", func() {
			So(week.IsStart(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("A Tuesday is not", func() {
			So(week.IsStart(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)), ShouldBeFalse)
		})

		Convey("A Monday with a time-of-day component is not", func() {
			So(week.IsStart(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)), ShouldBeFalse)
		})
	})
}

func TestParseFormat(t *testing.T) {
	Convey("Given week starts on the wire", t, func() {
		Convey("Format renders the date-only form", func() {
			So(week.Format(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)), ShouldEqual, "2025-03-10")
		})

		Convey("Parse accepts a Monday", func() {
			got, err := week.Parse("2025-03-10")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
		})

		Convey("Parse rejects a non-Monday", func() {
			_, err := week.Parse("2025-03-11")
			So(err, ShouldNotBeNil)
		})

		Convey("Parse rejects garbage", func() {
			_, err := week.Parse("not-a-date")
			So(err, ShouldNotBeNil)
		})

		Convey("Parse round-trips Format", func() {
			start := week.Start(time.Date(2025, 7, 4, 12, 0, 0, 0, time.UTC))
			got, err := week.Parse(week.Format(start))
			So(err, ShouldBeNil)
			So(got, ShouldEqual, start)
		})
	})
}
