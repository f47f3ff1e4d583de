// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MinWeeklySample is the minimum number of distinct weekly ratings
	// before a weekly average is displayed.
	MinWeeklySample int `koanf:"min_weekly_sample"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// ShardCount configures the number of shards in the submission ledger.
	ShardCount int `koanf:"shard_count"`

	// RolloverEnabled turns on the in-process weekly snapshot scheduler.
	// Leave off when an external cron drives POST /snapshots.
	RolloverEnabled bool `koanf:"rollover_enabled"`

	// RolloverGraceMinutes delays the in-process snapshot write past the
	// Monday boundary, leaving room for clock skew between clients.
	RolloverGraceMinutes int `koanf:"rollover_grace_minutes"`

	// OpenRoster accepts any teacher id as active. For local runs only;
	// deployments seed Teachers instead.
	OpenRoster bool `koanf:"open_roster"`

	// Teachers seeds the roster with id -> active pairs.
	Teachers map[string]bool `koanf:"teachers"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		MinWeeklySample:      3,
		MaxLeaderboardLimit:  100,
		ShardCount:           8,
		RolloverEnabled:      false,
		RolloverGraceMinutes: 5,
		OpenRoster:           false,
		Teachers:             map[string]bool{},
	}
}
