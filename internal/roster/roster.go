// Package roster answers the teacher existence and active-state check
// consumed before a rating is accepted. Teacher administration itself
// lives outside this service; the roster only answers Lookup.
package roster

import (
	"context"
	"sync"
)

// Teacher is the minimal roster view of a teacher.
type Teacher struct {
	ID     string
	Active bool
}

// Directory resolves teacher ids to roster state.
type Directory interface {
	// Lookup returns the teacher for id. Returns ErrTeacherNotFound for
	// an unknown id and ErrTeacherInactive for a known but deactivated
	// teacher.
	Lookup(ctx context.Context, id string) (Teacher, error)

	// Count returns the number of registered teachers.
	Count(ctx context.Context) int
}

// Option applies a configuration option to the in-memory directory.
type Option func(*inMemoryDirectory)

// WithTeachers seeds the directory with id -> active pairs.
func WithTeachers(teachers map[string]bool) Option {
	return func(d *inMemoryDirectory) {
		for id, active := range teachers {
			d.teachers[id] = active
		}
	}
}

// WithOpenEnrollment makes the directory accept any teacher id as an
// active teacher. Intended for local runs without a seeded roster; a
// real deployment seeds the roster from configuration.
func WithOpenEnrollment() Option {
	return func(d *inMemoryDirectory) {
		d.open = true
	}
}

// inMemoryDirectory implements Directory over a seeded map.
type inMemoryDirectory struct {
	mu       sync.RWMutex
	teachers map[string]bool // id -> active
	open     bool
}

// NewInMemoryDirectory creates a directory with configuration options.
func NewInMemoryDirectory(opts ...Option) Directory {
	d := &inMemoryDirectory{
		teachers: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDirectory) Lookup(ctx context.Context, id string) (Teacher, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	active, ok := d.teachers[id]
	if !ok {
		if d.open {
			return Teacher{ID: id, Active: true}, nil
		}
		return Teacher{}, ErrTeacherNotFound
	}
	if !active {
		return Teacher{ID: id, Active: false}, ErrTeacherInactive
	}
	return Teacher{ID: id, Active: true}, nil
}

func (d *inMemoryDirectory) Count(ctx context.Context) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.teachers)
}
