package roster

import "errors"

// Sentinel kinds for roster lookups.
var (
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrTeacherInactive = errors.New("teacher inactive")
)
