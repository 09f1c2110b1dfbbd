package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings. Matches and boards are transient game state;
	// records and summaries are kept without expiry.
	MatchTTL time.Duration
	BoardTTL time.Duration

	// SummaryLimit caps the length of the recent-match list
	SummaryLimit int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		MatchTTL:     24 * time.Hour,
		BoardTTL:     24 * time.Hour,
		SummaryLimit: 100,
	}
}
