package simratings

import "time"

// Config holds configuration for the rating simulation.
type Config struct {
	BaseURL       string        // Base URL of the service
	NumTeachers   int           // Number of teachers to rate
	NumSubmitters int           // Size of the anonymous submitter population
	NumRatings    int           // Number of rating submissions to send
	TopN          int           // Number of leaderboard entries to fetch
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	OutputFile    string        // Output file for submitted ratings
	LogFile       string        // Log file for simulation output
	Verbose       bool          // Enable verbose logging
}

// Rating is one submission on the wire.
type Rating struct {
	TeacherID   string `json:"teacher_id"`
	Stars       int    `json:"stars"`
	SubmitterID string `json:"submitter_id"`
}

// Ack is the response to a rating submission.
type Ack struct {
	Status        string `json:"status"`
	WeeklyUpdated bool   `json:"weekly_updated"`
}

// BoardEntry is one ranked leaderboard row as served on the wire.
type BoardEntry struct {
	TeacherID    string   `json:"teacher_id"`
	Average      *float64 `json:"average"`
	Count        int      `json:"count"`
	RankPosition int      `json:"rank_position"`
}

// Stats holds simulation statistics.
type Stats struct {
	RatingsGenerated   int
	RatingsSubmitted   int
	RatingsRecorded    int
	RatingsOverwritten int
	RatingsFailed      int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
