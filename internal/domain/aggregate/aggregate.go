// Package aggregate defines the count/average arithmetic shared by the
// live views and the snapshot writer. Functions here are pure: they take
// explicit inputs, never read a clock, and never touch storage, so the
// same record set always produces the same aggregate.
package aggregate

import (
	"math"

	"github.com/classrank/classrank/internal/domain/model"
)

// DefaultMinWeeklySample is the minimum number of distinct weekly
// ratings before a weekly average may be displayed. Below it the
// average is withheld to prevent single-rater skew.
const DefaultMinWeeklySample = 3

// meanPrecision scales rounding to two decimal places.
const meanPrecision = 100

// Mean returns the arithmetic mean of stars rounded to two decimal
// places, half away from zero. Returns 0 for an empty slice; callers
// gate on count before displaying.
func Mean(stars []int) float64 {
	if len(stars) == 0 {
		return 0
	}
	sum := 0
	for _, s := range stars {
		sum += s
	}
	m := float64(sum) / float64(len(stars))
	return math.Round(m*meanPrecision) / meanPrecision
}

// Weekly computes a teacher's aggregate for one week of deduplicated
// ratings. The average is withheld (nil) while count is below
// minSample; the count itself is always reported.
func Weekly(teacherID string, stars []int, minSample int) model.TeacherAggregate {
	agg := model.TeacherAggregate{
		TeacherID: teacherID,
		Count:     len(stars),
	}
	if len(stars) >= minSample {
		m := Mean(stars)
		agg.Average = &m
	}
	return agg
}

// AllTime computes a teacher's aggregate over the full event ledger.
// There is no minimum-sample gate on this view: an all-time average is
// shown even for a single rating. The asymmetry with Weekly is a
// product policy, not an oversight.
func AllTime(teacherID string, stars []int) model.TeacherAggregate {
	agg := model.TeacherAggregate{
		TeacherID: teacherID,
		Count:     len(stars),
	}
	if len(stars) > 0 {
		m := Mean(stars)
		agg.Average = &m
	}
	return agg
}
