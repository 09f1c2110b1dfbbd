package transport

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fleetgrid/battleship-go/internal/model"
)

// ErrUnknownCommand is returned for a verb the protocol does not define
var ErrUnknownCommand = errors.New("unknown command")

// ErrBadArguments is returned when a known verb has malformed arguments
var ErrBadArguments = errors.New("malformed command arguments")

// ErrIdentifyFirst is returned for any command sent before IDENTIFY
var ErrIdentifyFirst = errors.New("identify before issuing commands")

// ParseLine converts one inbound wire line into a command. The verb is
// case-insensitive; chat messages keep their original casing.
//
//	IDENTIFY <name>
//	PLACE <coordinate> <H|V> <length>
//	FIRE <coordinate>
//	CHAT <message...>
//	QUIT
func ParseLine(line string) (model.Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, ErrUnknownCommand
	}

	verb := line
	rest := ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		verb = line[:i]
		rest = strings.TrimSpace(line[i+1:])
	}

	switch strings.ToUpper(verb) {
	case "IDENTIFY":
		if rest == "" {
			return nil, ErrBadArguments
		}
		return model.IdentifyCommand{Name: model.PlayerName(rest)}, nil

	case "PLACE":
		fields := strings.Fields(rest)
		if len(fields) != 3 {
			return nil, ErrBadArguments
		}
		origin, err := model.ParseCoordinate(fields[0])
		if err != nil {
			return nil, err
		}
		orientation, err := model.ParseOrientation(fields[1])
		if err != nil {
			return nil, err
		}
		length, err := strconv.Atoi(fields[2])
		if err != nil || length < 1 {
			return nil, ErrBadArguments
		}
		return model.PlaceShipCommand{Origin: origin, Orientation: orientation, Length: length}, nil

	case "FIRE":
		target, err := model.ParseCoordinate(rest)
		if err != nil {
			return nil, err
		}
		return model.FireCommand{Target: target}, nil

	case "CHAT":
		if rest == "" {
			return nil, ErrBadArguments
		}
		return model.ChatCommand{Message: rest}, nil

	case "QUIT":
		return model.QuitCommand{}, nil

	default:
		return nil, ErrUnknownCommand
	}
}

// Error codes in outbound ERROR lines
const (
	CodeProtocol   = "PROTOCOL"
	CodeValidation = "VALIDATION"
	CodeTurn       = "TURN"
	CodeSession    = "SESSION"
)

// ErrorCode classifies a command failure for the wire. Unknown errors
// are reported as protocol-level so a buggy client fails loudly.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrNotYourPhase):
		return CodeTurn
	case errors.Is(err, model.ErrOutOfBounds),
		errors.Is(err, model.ErrShipOverlap),
		errors.Is(err, model.ErrWrongShipSize),
		errors.Is(err, model.ErrFleetComplete),
		errors.Is(err, model.ErrInvalidOrientation),
		errors.Is(err, model.ErrInvalidCoordinate):
		return CodeValidation
	case errors.Is(err, model.ErrInvalidName),
		errors.Is(err, model.ErrNameInUse),
		errors.Is(err, model.ErrNoActiveMatch),
		errors.Is(err, model.ErrAlreadyQueued),
		errors.Is(err, model.ErrMatchFinished),
		errors.Is(err, model.ErrNotInMatch):
		return CodeSession
	default:
		return CodeProtocol
	}
}

// EncodeEvent renders an outbound event as one or more wire lines,
// without the trailing newline. Multi-line payloads (rendered boards)
// are framed between BEGIN/END markers so line-oriented clients can
// consume them.
func EncodeEvent(event model.Event) string {
	switch p := event.Payload.(type) {
	case model.WelcomePayload:
		return fmt.Sprintf("WELCOME %s", p.Name)

	case model.QueuedPayload:
		return fmt.Sprintf("QUEUED %d", p.Position)

	case model.SpectatingPayload:
		return fmt.Sprintf("SPECTATING %s %s %d", p.Players[0], p.Players[1], p.Position)

	case model.PromotedPayload:
		return fmt.Sprintf("PROMOTED %s", p.Opponent)

	case model.StateReplayPayload:
		var sb strings.Builder
		turn := "WAIT"
		if p.YourTurn {
			turn = "FIRE"
		}
		fmt.Fprintf(&sb, "STATE %s %s %s %d\n", p.Phase, p.Opponent, turn, p.ShipsLeft)
		writeFramedGrid(&sb, "YOUR_BOARD", p.YourBoard)
		writeFramedGrid(&sb, "TARGET_GRID", p.TargetGrid)
		return strings.TrimSuffix(sb.String(), "\n")

	case model.MatchStartedPayload:
		first := "THEM"
		if p.YouGoFirst {
			first = "YOU"
		}
		return fmt.Sprintf("MATCH_STARTED %s %s", p.Opponent, first)

	case model.MatchAnnouncedPayload:
		return fmt.Sprintf("MATCH_STARTED %s %s FIRST %s", p.Players[0], p.Players[1], p.FirstTurn)

	case model.PlacementOKPayload:
		return fmt.Sprintf("PLACEMENT_OK %s %d", p.Ship, p.Remaining)

	case model.TurnPromptPayload:
		return "YOUR_TURN"

	case model.ShotResultPayload:
		line := fmt.Sprintf("SHOT %s %s %s", p.Shooter, p.Coordinate.Label(), strings.ToUpper(string(p.Result)))
		if p.SunkShip != "" {
			line += " SUNK " + p.SunkShip
		}
		return line

	case model.MatchEndedPayload:
		var sb strings.Builder
		fmt.Fprintf(&sb, "MATCH_ENDED %s\n", p.Winner)
		for owner, grid := range p.Boards {
			writeFramedGrid(&sb, "BOARD "+string(owner), grid)
		}
		return strings.TrimSuffix(sb.String(), "\n")

	case model.PresencePayload:
		if p.Connected {
			return fmt.Sprintf("PLAYER_RECONNECTED %s", p.Name)
		}
		return fmt.Sprintf("PLAYER_DISCONNECTED %s", p.Name)

	case model.ChatPayload:
		return fmt.Sprintf("CHAT %s %s", p.From, p.Message)

	case model.ErrorPayload:
		return fmt.Sprintf("ERROR %s %s", p.Code, p.Detail)

	default:
		return fmt.Sprintf("EVENT %s", event.Type)
	}
}

func writeFramedGrid(sb *strings.Builder, header, grid string) {
	if grid == "" {
		return
	}
	fmt.Fprintf(sb, "BEGIN %s\n", header)
	sb.WriteString(strings.TrimSuffix(grid, "\n"))
	sb.WriteString("\nEND\n")
}
