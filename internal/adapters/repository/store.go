// Package repository defines the rating store interfaces and errors.
package repository

import (
	"context"
	"time"

	"github.com/classrank/classrank/internal/domain/model"
)

// Ledger provides read/write access to submission state: the mutable
// per-week records and the append-only all-time event log.
type Ledger interface {
	// Record upserts the weekly rating for its (teacher, submitter,
	// week) key and, only when no record existed for that key before,
	// appends a matching all-time event. The two writes are atomic per
	// key: concurrent submissions for the same key serialize and the
	// last stars value wins. Returns true when an existing weekly
	// record was overwritten.
	Record(ctx context.Context, rec model.WeeklyRating) (updatedExisting bool, err error)

	// TeacherWeek returns the deduplicated weekly ratings for one
	// teacher in one week.
	TeacherWeek(ctx context.Context, teacherID string, weekStart time.Time) ([]model.WeeklyRating, error)

	// Week returns all weekly ratings for a week, grouped by teacher.
	Week(ctx context.Context, weekStart time.Time) (map[string][]model.WeeklyRating, error)

	// TeacherEvents returns the all-time events for one teacher in
	// append order.
	TeacherEvents(ctx context.Context, teacherID string) ([]model.RatingEvent, error)

	// TeacherIDs returns every teacher with at least one all-time event.
	TeacherIDs(ctx context.Context) []string

	// WeekStarts returns the distinct week starts present in the weekly
	// records, oldest first.
	WeekStarts(ctx context.Context) []time.Time

	// WeeklyCount and EventCount report ledger sizes.
	WeeklyCount(ctx context.Context) int
	EventCount(ctx context.Context) int
}

// Snapshots holds one immutable ranked row set per fully elapsed week.
type Snapshots interface {
	// Write stores the rows for weekStart. A week can be written exactly
	// once; a second call returns ErrSnapshotExists and leaves the first
	// write untouched. The write holds a per-week advisory lock so a
	// duplicated trigger cannot interleave with an in-flight write.
	Write(ctx context.Context, weekStart time.Time, rows []model.WeekSnapshotRow) error

	// Read returns the stored rows for weekStart in rank order, or
	// ErrSnapshotNotFound if that week was never snapshotted.
	Read(ctx context.Context, weekStart time.Time) ([]model.WeekSnapshotRow, error)

	// Has reports whether weekStart has been snapshotted.
	Has(ctx context.Context, weekStart time.Time) bool

	// Weeks returns the snapshotted week starts, oldest first.
	Weeks(ctx context.Context) []time.Time
}
