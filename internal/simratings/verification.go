package simratings

import (
	"fmt"
	"log"
	"sort"
)

// expectedBoard replays the submitted ratings through the same weekly
// semantics the service applies: last write wins per (teacher,
// submitter), averages round to two decimals, and a teacher below the
// display minimum has a nil average. Submission order here matches wire
// order only approximately under concurrency, so overwrites of the same
// key with different stars are excluded from strict comparison.
func expectedBoard(ratings []Rating, minWeeklySample int) ([]BoardEntry, map[string]bool) {
	type key struct{ teacherID, submitterID string }

	latest := make(map[key]int)
	contested := make(map[string]bool)
	firstSeen := make(map[key]int)
	for _, r := range ratings {
		k := key{r.TeacherID, r.SubmitterID}
		if prev, ok := firstSeen[k]; ok && prev != r.Stars {
			// Concurrent overwrites make the final value order-dependent.
			contested[r.TeacherID] = true
		} else {
			firstSeen[k] = r.Stars
		}
		latest[k] = r.Stars
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for k, stars := range latest {
		sums[k.teacherID] += stars
		counts[k.teacherID]++
	}

	entries := make([]BoardEntry, 0, len(counts))
	for teacherID, count := range counts {
		e := BoardEntry{TeacherID: teacherID, Count: count}
		if count >= minWeeklySample {
			avg := roundHundredths(float64(sums[teacherID]) / float64(count))
			e.Average = &avg
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Average == nil && b.Average == nil:
		case a.Average == nil:
			return false
		case b.Average == nil:
			return true
		case *a.Average != *b.Average:
			return *a.Average > *b.Average
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.TeacherID < b.TeacherID
	})
	for i := range entries {
		entries[i].RankPosition = i + 1
	}
	return entries, contested
}

func roundHundredths(v float64) float64 {
	scaled := v * 100
	if scaled >= 0 {
		scaled += 0.5
	} else {
		scaled -= 0.5
	}
	return float64(int64(scaled)) / 100
}

// verifyResults checks the served leaderboard against a local replay of
// the submitted ratings.
func verifyResults(config *Config, ratings []Rating, leaderboard []BoardEntry, minWeeklySample int) error {
	log.Println("verifying results...")

	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	if err := verifyOrdering(leaderboard); err != nil {
		return err
	}

	expected, contested := expectedBoard(ratings, minWeeklySample)
	if err := verifyCounts(expected, leaderboard, contested); err != nil {
		return err
	}

	displayBoard(leaderboard, config.Verbose)

	log.Println("result verification completed")
	return nil
}

// verifyOrdering checks rank positions are consecutive and averages
// never increase down the board, with gated entries trailing.
func verifyOrdering(leaderboard []BoardEntry) error {
	for i, e := range leaderboard {
		if e.RankPosition != i+1 {
			return fmt.Errorf("entry %d has rank position %d", i, e.RankPosition)
		}
		if i == 0 {
			continue
		}
		prev := leaderboard[i-1]
		if prev.Average == nil && e.Average != nil {
			return fmt.Errorf("displayable entry %s ranked below gated entry %s", e.TeacherID, prev.TeacherID)
		}
		if prev.Average != nil && e.Average != nil && *e.Average > *prev.Average {
			return fmt.Errorf("leaderboard not sorted: %s (%.2f) below %s (%.2f)",
				e.TeacherID, *e.Average, prev.TeacherID, *prev.Average)
		}
	}
	return nil
}

// verifyCounts compares each served entry against the local replay.
// Teachers whose final weekly value is order-dependent under concurrent
// overwrites are checked on count only.
func verifyCounts(expected, leaderboard []BoardEntry, contested map[string]bool) error {
	byTeacher := make(map[string]BoardEntry, len(expected))
	for _, e := range expected {
		byTeacher[e.TeacherID] = e
	}

	for _, got := range leaderboard {
		want, ok := byTeacher[got.TeacherID]
		if !ok {
			return fmt.Errorf("teacher %s on leaderboard was never rated", got.TeacherID)
		}
		if got.Count != want.Count {
			return fmt.Errorf("teacher %s: count %d, expected %d", got.TeacherID, got.Count, want.Count)
		}
		if contested[got.TeacherID] {
			continue
		}
		switch {
		case got.Average == nil && want.Average == nil:
		case got.Average == nil || want.Average == nil:
			return fmt.Errorf("teacher %s: display gate mismatch", got.TeacherID)
		case *got.Average != *want.Average:
			return fmt.Errorf("teacher %s: average %.2f, expected %.2f", got.TeacherID, *got.Average, *want.Average)
		}
	}
	return nil
}

// displayBoard shows the top of the served leaderboard.
func displayBoard(leaderboard []BoardEntry, verbose bool) {
	topN := 10
	if len(leaderboard) < topN {
		topN = len(leaderboard)
	}

	log.Printf("top %d teachers on the weekly board:", topN)
	for i := 0; i < topN; i++ {
		e := leaderboard[i]
		if e.Average != nil {
			log.Printf("   %d. %s - %.2f over %d ratings", e.RankPosition, e.TeacherID, *e.Average, e.Count)
		} else {
			log.Printf("   %d. %s - average withheld (%d ratings)", e.RankPosition, e.TeacherID, e.Count)
		}
	}

	if verbose && len(leaderboard) > 0 {
		displayed := 0
		for _, e := range leaderboard {
			if e.Average != nil {
				displayed++
			}
		}
		log.Printf("board statistics: %d entries, %d with displayable averages", len(leaderboard), displayed)
	}
}
