package model

import "strings"

// BoardSize is the fixed grid dimension
const BoardSize = 10

// ShipClass describes one of the ships every player must place
type ShipClass struct {
	Name   string
	Length int
}

// Fleet is the required ship multiset. Placement order is free, but a
// board is only ready once every class has been placed exactly once.
var Fleet = []ShipClass{
	{Name: "Carrier", Length: 5},
	{Name: "Battleship", Length: 4},
	{Name: "Cruiser", Length: 3},
	{Name: "Submarine", Length: 3},
	{Name: "Destroyer", Length: 2},
}

// ShipPlacement is one ship placed on a board
type ShipPlacement struct {
	Name        string
	Origin      Coordinate
	Orientation Orientation
	Length      int
}

// Cells returns every coordinate the ship occupies
func (p ShipPlacement) Cells() []Coordinate {
	cells := make([]Coordinate, p.Length)
	for i := 0; i < p.Length; i++ {
		if p.Orientation == Horizontal {
			cells[i] = Coordinate{Row: p.Origin.Row, Col: p.Origin.Col + i}
		} else {
			cells[i] = Coordinate{Row: p.Origin.Row + i, Col: p.Origin.Col}
		}
	}
	return cells
}

// ShotResult is the outcome of firing at a single cell
type ShotResult string

const (
	ShotHit          ShotResult = "hit"
	ShotMiss         ShotResult = "miss"
	ShotAlreadyTried ShotResult = "already_tried"
)

// Board is a single player's hidden grid: ship placements plus the
// set of cells the opponent has fired at. It belongs to exactly one
// match slot and is never shared between matches.
type Board struct {
	MatchID MatchID
	Owner   PlayerName
	Size    int
	Ships   []ShipPlacement
	Shots   map[string]bool // keyed by Coordinate.Label()
}

// NewBoard creates an empty board for a player in a match
func NewBoard(matchID MatchID, owner PlayerName) *Board {
	return &Board{
		MatchID: matchID,
		Owner:   owner,
		Size:    BoardSize,
		Shots:   make(map[string]bool),
	}
}

// Clone returns an independent copy of the board. Snapshots handed
// out for replay or the status API must not alias live state that a
// shot can mutate mid-read.
func (b *Board) Clone() *Board {
	clone := *b
	clone.Ships = append([]ShipPlacement(nil), b.Ships...)
	clone.Shots = make(map[string]bool, len(b.Shots))
	for label, hit := range b.Shots {
		clone.Shots[label] = hit
	}
	return &clone
}

// PlaceShip validates and records a ship placement. The ship class is
// assigned from the first fleet entry of the requested length not yet
// placed; a length with no remaining quota fails with ErrWrongShipSize.
func (b *Board) PlaceShip(origin Coordinate, orientation Orientation, length int) (*ShipPlacement, error) {
	if len(b.Ships) >= len(Fleet) {
		return nil, ErrFleetComplete
	}

	class, ok := b.nextUnplacedClass(length)
	if !ok {
		return nil, ErrWrongShipSize
	}

	placement := ShipPlacement{
		Name:        class.Name,
		Origin:      origin,
		Orientation: orientation,
		Length:      length,
	}

	for _, cell := range placement.Cells() {
		if cell.Row < 0 || cell.Row >= b.Size || cell.Col < 0 || cell.Col >= b.Size {
			return nil, ErrOutOfBounds
		}
		if b.ShipAt(cell) != nil {
			return nil, ErrShipOverlap
		}
	}

	b.Ships = append(b.Ships, placement)
	return &placement, nil
}

// nextUnplacedClass finds a fleet class of the given length that has
// not been used yet (two length-3 classes exist, so track by name)
func (b *Board) nextUnplacedClass(length int) (ShipClass, bool) {
	placed := make(map[string]bool, len(b.Ships))
	for _, s := range b.Ships {
		placed[s.Name] = true
	}
	for _, class := range Fleet {
		if class.Length == length && !placed[class.Name] {
			return class, true
		}
	}
	return ShipClass{}, false
}

// IsReady reports whether the full fleet has been placed
func (b *Board) IsReady() bool {
	return len(b.Ships) == len(Fleet)
}

// ShipAt returns the ship occupying the given cell, or nil
func (b *Board) ShipAt(c Coordinate) *ShipPlacement {
	for i := range b.Ships {
		for _, cell := range b.Ships[i].Cells() {
			if cell == c {
				return &b.Ships[i]
			}
		}
	}
	return nil
}

// ReceiveShot marks a cell as fired upon and reports the outcome.
// The second return value is the name of the ship sunk by this shot,
// or empty if nothing sank. AlreadyTried leaves the board unchanged.
func (b *Board) ReceiveShot(c Coordinate) (ShotResult, string) {
	label := c.Label()
	if b.Shots[label] {
		return ShotAlreadyTried, ""
	}
	b.Shots[label] = true

	ship := b.ShipAt(c)
	if ship == nil {
		return ShotMiss, ""
	}
	if b.isSunk(ship) {
		return ShotHit, ship.Name
	}
	return ShotHit, ""
}

// isSunk reports whether every cell of the ship has been fired upon
func (b *Board) isSunk(ship *ShipPlacement) bool {
	for _, cell := range ship.Cells() {
		if !b.Shots[cell.Label()] {
			return false
		}
	}
	return true
}

// AllSunk reports whether every cell of every placed ship has been hit
func (b *Board) AllSunk() bool {
	for i := range b.Ships {
		if !b.isSunk(&b.Ships[i]) {
			return false
		}
	}
	return true
}

// Render draws the board as a text grid: 'X' for hits, 'o' for misses,
// '.' for untouched water, and 'S' for intact ship cells when
// revealShips is set (the owner's or post-game view).
func (b *Board) Render(revealShips bool) string {
	var sb strings.Builder

	sb.WriteString("  ")
	for col := 0; col < b.Size; col++ {
		label := Coordinate{Row: 0, Col: col}.Label()[1:]
		if len(label) == 1 {
			sb.WriteString(" ")
		}
		sb.WriteString(label)
	}
	sb.WriteString("\n")

	for row := 0; row < b.Size; row++ {
		sb.WriteString(string(rune('A' + row)))
		sb.WriteString(" ")
		for col := 0; col < b.Size; col++ {
			c := Coordinate{Row: row, Col: col}
			shot := b.Shots[c.Label()]
			ship := b.ShipAt(c)
			switch {
			case shot && ship != nil:
				sb.WriteString(" X")
			case shot:
				sb.WriteString(" o")
			case ship != nil && revealShips:
				sb.WriteString(" S")
			default:
				sb.WriteString(" .")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
