// Package model contains domain records passed between layers.
package model

import "time"

// Star rating bounds. Submissions outside this range are rejected
// before any write happens.
const (
	MinStars = 1
	MaxStars = 5
)

// ValidStars reports whether stars is an acceptable rating value.
func ValidStars(stars int) bool {
	return stars >= MinStars && stars <= MaxStars
}

// RatingEvent is one row of the append-only all-time ledger. An event is
// created only for a submitter's first rating of a teacher in a given
// week; within-week edits never touch this record.
type RatingEvent struct {
	ID          string    // uuid, assigned by the ledger on append
	TeacherID   string    // subject of the rating
	Stars       int       // value in [MinStars, MaxStars]
	SubmitterID string    // opaque, stable anonymous-client key
	CreatedAt   time.Time // append timestamp
}

// WeeklyRating is the deduplicated per-week record. At most one exists
// per (TeacherID, SubmitterID, WeekStart); a resubmission in the same
// week overwrites Stars in place.
type WeeklyRating struct {
	TeacherID   string
	SubmitterID string
	WeekStart   time.Time // Monday, UTC midnight
	Stars       int
	UpdatedAt   time.Time
}

// TeacherAggregate is a derived count/average pair. It is computed on
// demand and never persisted except inside a week snapshot. A nil
// Average means the value is undisplayable for that view (the weekly
// minimum-sample gate); it is not a zero.
type TeacherAggregate struct {
	TeacherID string
	Count     int
	Average   *float64
}

// WeekSnapshotRow is one teacher's frozen result for a fully elapsed
// week. Rows are written exactly once at rollover and never mutated.
type WeekSnapshotRow struct {
	TeacherID     string
	WeekStart     time.Time
	WeekEnd       time.Time
	TotalRatings  int
	AverageRating *float64
	RankPosition  int
}
