package model

import (
	"strconv"
	"strings"
)

// Coordinate identifies a cell on a board
type Coordinate struct {
	Row int // 0-indexed, labelled A..J on the wire
	Col int // 0-indexed, labelled 1..10 on the wire
}

// Label renders a coordinate in wire form, e.g. {0,0} -> "A1", {2,9} -> "C10"
func (c Coordinate) Label() string {
	return string(rune('A'+c.Row)) + strconv.Itoa(c.Col+1)
}

// ParseCoordinate converts wire form like "B5" into a zero-based Coordinate.
// Parsing is pure: malformed or out-of-range input fails with
// ErrInvalidCoordinate and never mutates any state.
func ParseCoordinate(s string) (Coordinate, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Coordinate{}, ErrInvalidCoordinate
	}

	row := int(s[0] - 'A')
	if row < 0 || row >= BoardSize {
		return Coordinate{}, ErrInvalidCoordinate
	}

	col, err := strconv.Atoi(s[1:])
	if err != nil || col < 1 || col > BoardSize {
		return Coordinate{}, ErrInvalidCoordinate
	}

	return Coordinate{Row: row, Col: col - 1}, nil
}

// Orientation is the direction a ship extends from its origin
type Orientation string

const (
	Horizontal Orientation = "H"
	Vertical   Orientation = "V"
)

// ParseOrientation converts "H"/"V" (case-insensitive) into an Orientation
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "H":
		return Horizontal, nil
	case "V":
		return Vertical, nil
	default:
		return "", ErrInvalidOrientation
	}
}
