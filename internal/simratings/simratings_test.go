package simratings

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func avg(v float64) *float64 { return &v }

func TestExpectedBoard(t *testing.T) {
	Convey("Given ratings with a same-week resubmission", t, func() {
		ratings := []Rating{
			{TeacherID: "t-1", Stars: 4, SubmitterID: "s-1"},
			{TeacherID: "t-1", Stars: 4, SubmitterID: "s-2"},
			{TeacherID: "t-1", Stars: 4, SubmitterID: "s-3"},
			{TeacherID: "t-1", Stars: 2, SubmitterID: "s-1"},
		}

		Convey("When replaying the weekly semantics", func() {
			board, contested := expectedBoard(ratings, 3)

			Convey("Then the overwrite replaces the first value", func() {
				So(len(board), ShouldEqual, 1)
				So(board[0].Count, ShouldEqual, 3)
				So(*board[0].Average, ShouldEqual, 3.33)
			})

			Convey("And the overwritten teacher is marked contested", func() {
				So(contested["t-1"], ShouldBeTrue)
			})
		})
	})

	Convey("Given a teacher below the display minimum", t, func() {
		ratings := []Rating{
			{TeacherID: "t-1", Stars: 5, SubmitterID: "s-1"},
			{TeacherID: "t-1", Stars: 5, SubmitterID: "s-2"},
		}

		Convey("When replaying the weekly semantics", func() {
			board, _ := expectedBoard(ratings, 3)

			Convey("Then the average is withheld", func() {
				So(board[0].Count, ShouldEqual, 2)
				So(board[0].Average, ShouldBeNil)
			})
		})
	})

	Convey("Given several teachers", t, func() {
		ratings := []Rating{
			{TeacherID: "t-low", Stars: 2, SubmitterID: "s-1"},
			{TeacherID: "t-low", Stars: 2, SubmitterID: "s-2"},
			{TeacherID: "t-low", Stars: 2, SubmitterID: "s-3"},
			{TeacherID: "t-high", Stars: 5, SubmitterID: "s-1"},
			{TeacherID: "t-high", Stars: 5, SubmitterID: "s-2"},
			{TeacherID: "t-high", Stars: 5, SubmitterID: "s-3"},
			{TeacherID: "t-gated", Stars: 5, SubmitterID: "s-1"},
		}

		Convey("When replaying the weekly semantics", func() {
			board, _ := expectedBoard(ratings, 3)

			Convey("Then displayable teachers rank above gated ones, best first", func() {
				So(len(board), ShouldEqual, 3)
				So(board[0].TeacherID, ShouldEqual, "t-high")
				So(board[1].TeacherID, ShouldEqual, "t-low")
				So(board[2].TeacherID, ShouldEqual, "t-gated")
				So(board[0].RankPosition, ShouldEqual, 1)
				So(board[2].RankPosition, ShouldEqual, 3)
			})
		})
	})
}

func TestVerifyOrdering(t *testing.T) {
	Convey("Given a correctly ordered board", t, func() {
		board := []BoardEntry{
			{TeacherID: "t-1", Average: avg(4.5), Count: 4, RankPosition: 1},
			{TeacherID: "t-2", Average: avg(3.0), Count: 3, RankPosition: 2},
			{TeacherID: "t-3", Average: nil, Count: 2, RankPosition: 3},
		}
		So(verifyOrdering(board), ShouldBeNil)
	})

	Convey("Given a board with averages out of order", t, func() {
		board := []BoardEntry{
			{TeacherID: "t-1", Average: avg(3.0), Count: 4, RankPosition: 1},
			{TeacherID: "t-2", Average: avg(4.5), Count: 3, RankPosition: 2},
		}
		So(verifyOrdering(board), ShouldNotBeNil)
	})

	Convey("Given a displayable entry below a gated one", t, func() {
		board := []BoardEntry{
			{TeacherID: "t-1", Average: nil, Count: 2, RankPosition: 1},
			{TeacherID: "t-2", Average: avg(4.5), Count: 3, RankPosition: 2},
		}
		So(verifyOrdering(board), ShouldNotBeNil)
	})

	Convey("Given non-consecutive rank positions", t, func() {
		board := []BoardEntry{
			{TeacherID: "t-1", Average: avg(4.5), Count: 4, RankPosition: 1},
			{TeacherID: "t-2", Average: avg(3.0), Count: 3, RankPosition: 3},
		}
		So(verifyOrdering(board), ShouldNotBeNil)
	})
}

func TestGenerateStars(t *testing.T) {
	Convey("Given every temperament", t, func() {
		Convey("Then stars always land in the 1-5 range", func() {
			for temperament := int64(0); temperament < starTemperamentDivisor; temperament++ {
				for i := 0; i < 100; i++ {
					stars := generateStars(temperament)
					So(stars, ShouldBeGreaterThanOrEqualTo, 1)
					So(stars, ShouldBeLessThanOrEqualTo, 5)
				}
			}
		})
	})
}

func TestRoundHundredths(t *testing.T) {
	Convey("Given averages needing rounding", t, func() {
		So(roundHundredths(10.0/3.0), ShouldEqual, 3.33)
		So(roundHundredths(11.0/3.0), ShouldEqual, 3.67)
		So(roundHundredths(4.0), ShouldEqual, 4.0)
		So(roundHundredths(4.125), ShouldEqual, 4.13)
	})
}
