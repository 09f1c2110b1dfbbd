package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/battleship-go/internal/model"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.Command
	}{
		{
			name: "identify",
			line: "IDENTIFY alice",
			want: model.IdentifyCommand{Name: "alice"},
		},
		{
			name: "identify lowercase verb",
			line: "identify alice",
			want: model.IdentifyCommand{Name: "alice"},
		},
		{
			name: "place",
			line: "PLACE B5 H 3",
			want: model.PlaceShipCommand{
				Origin:      model.Coordinate{Row: 1, Col: 4},
				Orientation: model.Horizontal,
				Length:      3,
			},
		},
		{
			name: "place vertical lowercase",
			line: "place a1 v 5",
			want: model.PlaceShipCommand{
				Origin:      model.Coordinate{Row: 0, Col: 0},
				Orientation: model.Vertical,
				Length:      5,
			},
		},
		{
			name: "fire",
			line: "FIRE J10",
			want: model.FireCommand{Target: model.Coordinate{Row: 9, Col: 9}},
		},
		{
			name: "chat keeps casing and spaces",
			line: "CHAT Good Luck out there",
			want: model.ChatCommand{Message: "Good Luck out there"},
		},
		{
			name: "quit",
			line: "QUIT",
			want: model.QuitCommand{},
		},
		{
			name: "surrounding whitespace",
			line: "  FIRE A1  ",
			want: model.FireCommand{Target: model.Coordinate{Row: 0, Col: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		err  error
	}{
		{"empty", "", ErrUnknownCommand},
		{"unknown verb", "EXPLODE A1", ErrUnknownCommand},
		{"identify without name", "IDENTIFY", ErrBadArguments},
		{"place missing args", "PLACE A1 H", ErrBadArguments},
		{"place bad coordinate", "PLACE Z1 H 3", model.ErrInvalidCoordinate},
		{"place bad orientation", "PLACE A1 X 3", model.ErrInvalidOrientation},
		{"place bad length", "PLACE A1 H three", ErrBadArguments},
		{"fire bad coordinate", "FIRE A11", model.ErrInvalidCoordinate},
		{"fire no coordinate", "FIRE", model.ErrInvalidCoordinate},
		{"chat empty", "CHAT", ErrBadArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, CodeTurn, ErrorCode(model.ErrNotYourTurn))
	assert.Equal(t, CodeTurn, ErrorCode(model.ErrNotYourPhase))
	assert.Equal(t, CodeValidation, ErrorCode(model.ErrShipOverlap))
	assert.Equal(t, CodeValidation, ErrorCode(model.ErrInvalidCoordinate))
	assert.Equal(t, CodeSession, ErrorCode(model.ErrNameInUse))
	assert.Equal(t, CodeSession, ErrorCode(model.ErrNoActiveMatch))
	assert.Equal(t, CodeProtocol, ErrorCode(ErrUnknownCommand))
}

func TestEncodeEvent(t *testing.T) {
	tests := []struct {
		name  string
		event model.Event
		want  string
	}{
		{
			name: "welcome",
			event: model.Event{Type: model.EventWelcome,
				Payload: model.WelcomePayload{Name: "alice"}},
			want: "WELCOME alice",
		},
		{
			name: "queued",
			event: model.Event{Type: model.EventQueued,
				Payload: model.QueuedPayload{Position: 3}},
			want: "QUEUED 3",
		},
		{
			name: "spectating",
			event: model.Event{Type: model.EventSpectating,
				Payload: model.SpectatingPayload{Players: [2]model.PlayerName{"alice", "bob"}, Position: 1}},
			want: "SPECTATING alice bob 1",
		},
		{
			name: "match started for first player",
			event: model.Event{Type: model.EventMatchStarted,
				Payload: model.MatchStartedPayload{Opponent: "bob", YouGoFirst: true}},
			want: "MATCH_STARTED bob YOU",
		},
		{
			name: "placement ok",
			event: model.Event{Type: model.EventPlacementOK,
				Payload: model.PlacementOKPayload{Ship: "Cruiser", Remaining: 2}},
			want: "PLACEMENT_OK Cruiser 2",
		},
		{
			name: "turn prompt",
			event: model.Event{Type: model.EventTurnPrompt,
				Payload: model.TurnPromptPayload{}},
			want: "YOUR_TURN",
		},
		{
			name: "shot miss",
			event: model.Event{Type: model.EventShotResult,
				Payload: model.ShotResultPayload{Shooter: "alice",
					Coordinate: model.Coordinate{Row: 1, Col: 4}, Result: model.ShotMiss}},
			want: "SHOT alice B5 MISS",
		},
		{
			name: "shot sinks ship",
			event: model.Event{Type: model.EventShotResult,
				Payload: model.ShotResultPayload{Shooter: "alice",
					Coordinate: model.Coordinate{Row: 0, Col: 0}, Result: model.ShotHit,
					SunkShip: "Destroyer"}},
			want: "SHOT alice A1 HIT SUNK Destroyer",
		},
		{
			name: "disconnected",
			event: model.Event{Type: model.EventPlayerDisconnected,
				Payload: model.PresencePayload{Name: "bob", Connected: false}},
			want: "PLAYER_DISCONNECTED bob",
		},
		{
			name: "chat",
			event: model.Event{Type: model.EventChat,
				Payload: model.ChatPayload{From: "carol", Message: "nice shot"}},
			want: "CHAT carol nice shot",
		},
		{
			name: "error",
			event: model.Event{Type: model.EventError,
				Payload: model.ErrorPayload{Code: CodeTurn, Detail: "not this player's turn"}},
			want: "ERROR TURN not this player's turn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeEvent(tt.event))
		})
	}
}

func TestEncodeStateReplayFramesBoards(t *testing.T) {
	board := model.NewBoard("m", "alice")
	_, err := board.PlaceShip(model.Coordinate{Row: 0, Col: 0}, model.Horizontal, 2)
	require.NoError(t, err)

	encoded := EncodeEvent(model.Event{
		Type: model.EventStateReplay,
		Payload: model.StateReplayPayload{
			Phase:     model.PhaseTurn,
			Opponent:  "bob",
			YourBoard: board.Render(true),
			YourTurn:  true,
		},
	})

	assert.Contains(t, encoded, "STATE turn bob FIRE 0")
	assert.Contains(t, encoded, "BEGIN YOUR_BOARD")
	assert.Contains(t, encoded, " S S")
	assert.Contains(t, encoded, "END")
}

func TestEncodeMatchEnded(t *testing.T) {
	encoded := EncodeEvent(model.Event{
		Type: model.EventMatchEnded,
		Payload: model.MatchEndedPayload{
			Winner: "alice",
			Boards: map[model.PlayerName]string{"alice": "grid-a\n", "bob": "grid-b\n"},
		},
	})

	assert.Contains(t, encoded, "MATCH_ENDED alice")
	assert.Contains(t, encoded, "BEGIN BOARD alice")
	assert.Contains(t, encoded, "BEGIN BOARD bob")
}
