package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrSnapshotExists   = errors.New("week already snapshotted")
	ErrSnapshotNotFound = errors.New("week snapshot not found")
	ErrEmptyKey         = errors.New("empty teacher or submitter id")
)
