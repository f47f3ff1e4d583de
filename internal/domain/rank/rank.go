// Package rank produces the deterministic leaderboard order.
//
// The same function ranks live aggregates and stamps rank positions into
// immutable week snapshots, so it must be pure: identical input always
// yields identical output, including for ties.
package rank

import (
	"fmt"
	"sort"

	"github.com/classrank/classrank/internal/domain/model"
)

// Direction selects which end of the scale ranks first.
type Direction string

const (
	// Top ranks the highest averages first.
	Top Direction = "top"
	// Bottom ranks the lowest averages first.
	Bottom Direction = "bottom"
)

// ParseDirection reads a direction from its wire form. An empty string
// defaults to Top.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", string(Top):
		return Top, nil
	case string(Bottom):
		return Bottom, nil
	default:
		return "", fmt.Errorf("unknown leaderboard direction %q", s)
	}
}

// Entry is one ranked leaderboard row. Average is nil when the weekly
// minimum-sample gate withheld it; gated entries always sort after
// displayable ones, in either direction.
type Entry struct {
	TeacherID    string   `json:"teacher_id"`
	Average      *float64 `json:"average"`
	Count        int      `json:"count"`
	RankPosition int      `json:"rank_position"`
}

// Rank orders entries and assigns 1-based positions. Sort keys, in
// order: average (descending for Top, ascending for Bottom, nil last
// regardless of direction), count descending (a larger sample wins a
// tied average), teacher id ascending (final deterministic tie-break).
// Ties in average and count still receive distinct consecutive
// positions. The input slice is not modified.
func Rank(entries []Entry, direction Direction) []Entry {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j], direction)
	})

	for i := range ranked {
		ranked[i].RankPosition = i + 1
	}
	return ranked
}

// less reports whether a ranks strictly before b.
func less(a, b Entry, direction Direction) bool {
	switch {
	case a.Average == nil && b.Average == nil:
		// Both gated: fall through to count, then id.
	case a.Average == nil:
		return false
	case b.Average == nil:
		return true
	case *a.Average != *b.Average:
		if direction == Bottom {
			return *a.Average < *b.Average
		}
		return *a.Average > *b.Average
	}
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.TeacherID < b.TeacherID
}

// FromAggregates converts derived aggregates into unranked entries.
func FromAggregates(aggs []model.TeacherAggregate) []Entry {
	entries := make([]Entry, len(aggs))
	for i, a := range aggs {
		entries[i] = Entry{
			TeacherID: a.TeacherID,
			Average:   a.Average,
			Count:     a.Count,
		}
	}
	return entries
}

// FromSnapshot converts frozen snapshot rows into unranked entries so a
// past week can be re-ordered for the opposite direction without
// recomputing any aggregate.
func FromSnapshot(rows []model.WeekSnapshotRow) []Entry {
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = Entry{
			TeacherID: r.TeacherID,
			Average:   r.AverageRating,
			Count:     r.TotalRatings,
		}
	}
	return entries
}
