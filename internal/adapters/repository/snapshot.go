package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/classrank/classrank/internal/domain/model"
	"github.com/classrank/classrank/pkg/metrics"
)

// MemorySnapshots implements Snapshots as a write-once map keyed by
// week start. This is the engine's only cache: there is no TTL and no
// eviction, only "never write again after the first successful write
// for that key".
type MemorySnapshots struct {
	mu    sync.RWMutex
	weeks map[int64][]model.WeekSnapshotRow

	// lockMu guards the advisory lock table; each week's lock is held
	// for the duration of its write so a duplicated rollover trigger
	// blocks and then fails fast instead of interleaving.
	lockMu    sync.Mutex
	weekLocks map[int64]*sync.Mutex
}

// NewMemorySnapshots creates an empty snapshot store.
func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{
		weeks:     make(map[int64][]model.WeekSnapshotRow),
		weekLocks: make(map[int64]*sync.Mutex),
	}
}

func (s *MemorySnapshots) advisoryLock(weekUnix int64) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	l, ok := s.weekLocks[weekUnix]
	if !ok {
		l = &sync.Mutex{}
		s.weekLocks[weekUnix] = l
	}
	return l
}

// Write stores rows for weekStart exactly once.
func (s *MemorySnapshots) Write(ctx context.Context, weekStart time.Time, rows []model.WeekSnapshotRow) error {
	weekUnix := weekStart.Unix()
	start := time.Now()

	lock := s.advisoryLock(weekUnix)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	if _, exists := s.weeks[weekUnix]; exists {
		s.mu.Unlock()
		metrics.RecordSnapshotConflict()
		return ErrSnapshotExists
	}

	stored := make([]model.WeekSnapshotRow, len(rows))
	copy(stored, rows)
	s.weeks[weekUnix] = stored
	count := len(s.weeks)
	s.mu.Unlock()

	metrics.RecordSnapshotWrite(len(rows), float64(time.Since(start).Microseconds())/1000, time.Now().Unix())
	metrics.UpdateSnapshotWeeksStored(count)
	return nil
}

// Read returns the frozen rows for weekStart in stored (rank) order.
func (s *MemorySnapshots) Read(ctx context.Context, weekStart time.Time) ([]model.WeekSnapshotRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.weeks[weekStart.Unix()]
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	out := make([]model.WeekSnapshotRow, len(rows))
	copy(out, rows)
	return out, nil
}

// Has reports whether weekStart has been snapshotted.
func (s *MemorySnapshots) Has(ctx context.Context, weekStart time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.weeks[weekStart.Unix()]
	return ok
}

// Weeks returns the snapshotted week starts, oldest first.
func (s *MemorySnapshots) Weeks(ctx context.Context) []time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]time.Time, 0, len(s.weeks))
	for unix := range s.weeks {
		out = append(out, time.Unix(unix, 0).UTC())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
