package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/classrank/classrank/internal/domain/model"
	"github.com/classrank/classrank/pkg/metrics"
)

// Sharded, in-memory Ledger implementation.
//
// Records are sharded by teacher id, so every key (teacher, submitter,
// week) lives on exactly one shard and the shard mutex serializes
// concurrent submissions for the same key. The weekly upsert and the
// conditional event append happen under one critical section: no
// interleaving can produce two events, or zero, for a submitter's first
// rating of a teacher in a week.

// defaultShardCount is used when no option overrides it.
const defaultShardCount = 8

// weekKey identifies one weekly rating record.
type weekKey struct {
	submitterID string
	weekUnix    int64
}

// ledgerShard holds the subset of teachers hashed onto it.
type ledgerShard struct {
	mu sync.RWMutex
	// weekly: teacher -> (submitter, week) -> record
	weekly map[string]map[weekKey]model.WeeklyRating
	// events: teacher -> append-ordered all-time events
	events map[string][]model.RatingEvent
}

// MemoryLedger implements Ledger over sharded in-memory maps.
type MemoryLedger struct {
	shards      []*ledgerShard
	shardCount  int
	weeklyCount atomic.Int64
	eventCount  atomic.Int64
}

// LedgerOption applies a configuration option to the MemoryLedger.
type LedgerOption func(*MemoryLedger)

// WithShardCount sets the number of shards in the ledger.
func WithShardCount(count int) LedgerOption {
	return func(l *MemoryLedger) {
		if count > 0 {
			l.shardCount = count
		}
	}
}

// NewMemoryLedger creates a ledger with configuration options.
func NewMemoryLedger(opts ...LedgerOption) *MemoryLedger {
	l := &MemoryLedger{
		shardCount: defaultShardCount,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.shards = make([]*ledgerShard, l.shardCount)
	for i := range l.shards {
		l.shards[i] = &ledgerShard{
			weekly: make(map[string]map[weekKey]model.WeeklyRating),
			events: make(map[string][]model.RatingEvent),
		}
	}

	metrics.UpdateLedgerShardCount(l.shardCount)
	return l
}

func (l *MemoryLedger) shardFor(teacherID string) *ledgerShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(teacherID))
	return l.shards[int(h.Sum32())%l.shardCount]
}

// Record upserts the weekly rating and conditionally appends the
// all-time event. See the Ledger interface for the atomicity contract.
func (l *MemoryLedger) Record(ctx context.Context, rec model.WeeklyRating) (bool, error) {
	if rec.TeacherID == "" || rec.SubmitterID == "" {
		return false, ErrEmptyKey
	}
	start := time.Now()

	s := l.shardFor(rec.TeacherID)
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey := s.weekly[rec.TeacherID]
	if byKey == nil {
		byKey = make(map[weekKey]model.WeeklyRating)
		s.weekly[rec.TeacherID] = byKey
	}

	key := weekKey{submitterID: rec.SubmitterID, weekUnix: rec.WeekStart.Unix()}
	_, existed := byKey[key]
	byKey[key] = rec

	if !existed {
		// First submission of the week feeds the all-time ledger. A
		// within-week edit changes the weekly number only; the original
		// first-of-week stars stay in the event log untouched.
		s.events[rec.TeacherID] = append(s.events[rec.TeacherID], model.RatingEvent{
			ID:          uuid.NewString(),
			TeacherID:   rec.TeacherID,
			Stars:       rec.Stars,
			SubmitterID: rec.SubmitterID,
			CreatedAt:   rec.UpdatedAt,
		})
		l.weeklyCount.Add(1)
		l.eventCount.Add(1)
		metrics.UpdateLedgerWeeklyRecords(int(l.weeklyCount.Load()))
		metrics.UpdateLedgerEventsTotal(int(l.eventCount.Load()))
	}

	metrics.RecordLedgerUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	return existed, nil
}

// TeacherWeek returns one teacher's deduplicated ratings for a week.
func (l *MemoryLedger) TeacherWeek(ctx context.Context, teacherID string, weekStart time.Time) ([]model.WeeklyRating, error) {
	start := time.Now()

	s := l.shardFor(teacherID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.WeeklyRating
	for key, rec := range s.weekly[teacherID] {
		if key.weekUnix == weekStart.Unix() {
			out = append(out, rec)
		}
	}

	metrics.RecordLedgerQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	return out, nil
}

// Week returns all ratings for a week grouped by teacher.
func (l *MemoryLedger) Week(ctx context.Context, weekStart time.Time) (map[string][]model.WeeklyRating, error) {
	start := time.Now()
	weekUnix := weekStart.Unix()

	out := make(map[string][]model.WeeklyRating)
	for _, s := range l.shards {
		s.mu.RLock()
		for teacherID, byKey := range s.weekly {
			for key, rec := range byKey {
				if key.weekUnix == weekUnix {
					out[teacherID] = append(out[teacherID], rec)
				}
			}
		}
		s.mu.RUnlock()
	}

	metrics.RecordLedgerQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	return out, nil
}

// TeacherEvents returns one teacher's all-time events in append order.
func (l *MemoryLedger) TeacherEvents(ctx context.Context, teacherID string) ([]model.RatingEvent, error) {
	start := time.Now()

	s := l.shardFor(teacherID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.events[teacherID]
	out := make([]model.RatingEvent, len(events))
	copy(out, events)

	metrics.RecordLedgerQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	return out, nil
}

// TeacherIDs returns every teacher with at least one all-time event,
// sorted for deterministic iteration.
func (l *MemoryLedger) TeacherIDs(ctx context.Context) []string {
	var out []string
	for _, s := range l.shards {
		s.mu.RLock()
		for teacherID := range s.events {
			out = append(out, teacherID)
		}
		s.mu.RUnlock()
	}
	sort.Strings(out)
	return out
}

// WeekStarts returns the distinct week starts present, oldest first.
func (l *MemoryLedger) WeekStarts(ctx context.Context) []time.Time {
	seen := make(map[int64]struct{})
	for _, s := range l.shards {
		s.mu.RLock()
		for _, byKey := range s.weekly {
			for key := range byKey {
				seen[key.weekUnix] = struct{}{}
			}
		}
		s.mu.RUnlock()
	}

	out := make([]time.Time, 0, len(seen))
	for unix := range seen {
		out = append(out, time.Unix(unix, 0).UTC())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// WeeklyCount returns the number of weekly records held.
func (l *MemoryLedger) WeeklyCount(ctx context.Context) int {
	return int(l.weeklyCount.Load())
}

// EventCount returns the number of all-time events held.
func (l *MemoryLedger) EventCount(ctx context.Context) int {
	return int(l.eventCount.Load())
}
