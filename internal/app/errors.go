package service

import "errors"

// Sentinel kinds for engine operations. Validation failures are
// rejected synchronously before any write.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrInvalidStars       = errors.New("stars must be an integer between 1 and 5")
	ErrInvalidTeacherID   = errors.New("teacher id must not be empty")
	ErrInvalidSubmitterID = errors.New("submitter id must not be empty")
	ErrInvalidMode        = errors.New("unknown rating view mode")
	ErrInvalidWeekStart   = errors.New("week start must be a Monday date")
	ErrInvalidLimit       = errors.New("invalid leaderboard limit")
	ErrWeekOpen           = errors.New("week has not fully elapsed")
	ErrWeekClosed         = errors.New("week is snapshotted and closed to submissions")
)
