package model

// EventType identifies the type of outbound event
type EventType string

const (
	// Session events
	EventWelcome     EventType = "welcome"
	EventQueued      EventType = "queued"
	EventSpectating  EventType = "spectating"
	EventPromoted    EventType = "promoted"
	EventStateReplay EventType = "state_replay"

	// Match events
	EventMatchStarted EventType = "match_started"
	EventPlacementOK  EventType = "placement_ok"
	EventTurnPrompt   EventType = "turn_prompt"
	EventShotResult   EventType = "shot_result"
	EventMatchEnded   EventType = "match_ended"

	// Presence events
	EventPlayerDisconnected EventType = "player_disconnected"
	EventPlayerReconnected  EventType = "player_reconnected"

	// Chat events
	EventChat EventType = "chat"

	// Error event
	EventError EventType = "error"
)

// Event is an outbound message produced by the core for delivery to an
// identity. The transport owns the wire encoding.
type Event struct {
	Type    EventType
	MatchID MatchID // Empty for session-only events
	Payload any
}

// WelcomePayload acknowledges a successful identify
type WelcomePayload struct {
	Name PlayerName
}

// QueuedPayload tells a waiting identity its queue position
type QueuedPayload struct {
	Position int
}

// SpectatingPayload tells a late arrival which match it is observing
type SpectatingPayload struct {
	Players  [2]PlayerName
	Position int // Queue position for eventual promotion
}

// PromotedPayload tells a spectator it is now a player in a fresh match
type PromotedPayload struct {
	Opponent PlayerName
}

// StateReplayPayload carries the authoritative state replayed to a
// reconnecting player
type StateReplayPayload struct {
	Phase      Phase
	Opponent   PlayerName
	YourBoard  string // Own grid, ships revealed
	TargetGrid string // Opponent grid, ships hidden
	YourTurn   bool
	ShipsLeft  int // Fleet entries still to place (placement phase)
}

// MatchStartedPayload announces the turn phase beginning to a player
type MatchStartedPayload struct {
	Opponent   PlayerName
	YouGoFirst bool
}

// MatchAnnouncedPayload is the spectator form of match start
type MatchAnnouncedPayload struct {
	Players   [2]PlayerName
	FirstTurn PlayerName
}

// PlacementOKPayload acknowledges an accepted ship placement
type PlacementOKPayload struct {
	Ship      string
	Remaining int
}

// TurnPromptPayload invites the addressed player to fire
type TurnPromptPayload struct{}

// ShotResultPayload reports an applied shot to both players and spectators
type ShotResultPayload struct {
	Shooter    PlayerName
	Coordinate Coordinate
	Result     ShotResult
	SunkShip   string // Empty unless this shot sank a ship
}

// MatchEndedPayload carries the final result and revealed boards
type MatchEndedPayload struct {
	Winner PlayerName
	Boards map[PlayerName]string // Rendered grids, ships revealed
}

// PresencePayload reports a player connection state change to the
// other observers of a match
type PresencePayload struct {
	Name      PlayerName
	Connected bool
}

// ChatPayload relays a chat message within a match
type ChatPayload struct {
	From    PlayerName
	Message string
}

// ErrorPayload reports a rejected command to the offending identity only
type ErrorPayload struct {
	Code   string // PROTOCOL, VALIDATION, TURN or SESSION
	Detail string
}
