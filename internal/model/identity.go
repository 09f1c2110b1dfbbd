package model

import "time"

// PlayerName is the user-supplied name that keys an identity.
// It is the only credential the server knows; reconnection is
// identified purely by presenting the same name again.
type PlayerName string

// PlayerRecord is the durable win/loss tally for a player name.
type PlayerRecord struct {
	Name       PlayerName
	Wins       int
	Losses     int
	ShotsFired int
	Hits       int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Accuracy returns the hit ratio in [0, 1], or 0 before any shot.
func (r *PlayerRecord) Accuracy() float64 {
	if r.ShotsFired == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.ShotsFired)
}
