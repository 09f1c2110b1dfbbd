package model

import "time"

// MatchID uniquely identifies a match
type MatchID string

// Phase represents the current phase of a match. Phases are strictly
// linear: placement -> turn -> finished, no cycles, no skipping.
type Phase string

const (
	PhasePlacement Phase = "placement" // Both players placing ships
	PhaseTurn      Phase = "turn"      // Alternating fire
	PhaseFinished  Phase = "finished"  // Terminal; winner recorded
)

// Match represents a single game between exactly two identities
type Match struct {
	ID    MatchID
	Phase Phase

	// Players in pairing order; Players[0] moves first
	Players [2]PlayerName

	// TurnIdx indexes Players for who fires next (turn phase only)
	TurnIdx int

	// Spectators observing this match's broadcasts
	Spectators []PlayerName

	// Winner is set on transition to finished
	Winner PlayerName

	CreatedAt  time.Time
	StartedAt  time.Time // When both boards became ready
	FinishedAt time.Time
	UpdatedAt  time.Time
}

// Clone returns an independent copy of the match
func (m *Match) Clone() *Match {
	clone := *m
	clone.Spectators = append([]PlayerName(nil), m.Spectators...)
	return &clone
}

// CurrentPlayer returns the player whose turn it is
func (m *Match) CurrentPlayer() PlayerName {
	return m.Players[m.TurnIdx]
}

// HasPlayer reports whether the name is one of the two players
func (m *Match) HasPlayer(name PlayerName) bool {
	return m.Players[0] == name || m.Players[1] == name
}

// Opponent returns the other player, or false if name is not a player
func (m *Match) Opponent(name PlayerName) (PlayerName, bool) {
	switch name {
	case m.Players[0]:
		return m.Players[1], true
	case m.Players[1]:
		return m.Players[0], true
	default:
		return "", false
	}
}

// HasSpectator reports whether the name is watching this match
func (m *Match) HasSpectator(name PlayerName) bool {
	for _, s := range m.Spectators {
		if s == name {
			return true
		}
	}
	return false
}

// AddSpectator registers a watcher; duplicate adds are no-ops
func (m *Match) AddSpectator(name PlayerName) {
	if m.HasSpectator(name) || m.HasPlayer(name) {
		return
	}
	m.Spectators = append(m.Spectators, name)
}

// RemoveSpectator drops a watcher if present
func (m *Match) RemoveSpectator(name PlayerName) {
	for i, s := range m.Spectators {
		if s == name {
			m.Spectators = append(m.Spectators[:i], m.Spectators[i+1:]...)
			return
		}
	}
}

// MatchSummary is a lightweight record of a completed match
type MatchSummary struct {
	ID         MatchID
	Players    [2]PlayerName
	Winner     PlayerName
	Loser      PlayerName
	Shots      int // Total shots fired by both players
	StartedAt  time.Time
	FinishedAt time.Time
}
