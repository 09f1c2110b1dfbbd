package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrIdentityNotFound = errors.New("identity not found")
	ErrInvalidName      = errors.New("invalid player name")
	ErrNameInUse        = errors.New("name is bound to a live connection")
	ErrNoActiveMatch    = errors.New("no active match for this identity")
	ErrAlreadyQueued    = errors.New("identity is already queued")

	// Match errors
	ErrMatchNotFound = errors.New("match not found")
	ErrNotInMatch    = errors.New("identity is not a player in this match")
	ErrNotYourPhase  = errors.New("command not valid in current phase")
	ErrNotYourTurn   = errors.New("not this player's turn")
	ErrMatchFinished = errors.New("match is already finished")

	// Placement errors
	ErrOutOfBounds        = errors.New("ship does not fit on the board")
	ErrShipOverlap        = errors.New("ship overlaps an existing ship")
	ErrWrongShipSize      = errors.New("no ship of that length left to place")
	ErrFleetComplete      = errors.New("all ships are already placed")
	ErrInvalidOrientation = errors.New("orientation must be H or V")

	// Coordinate errors
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// Board errors
	ErrBoardNotFound = errors.New("board not found")

	// Record errors
	ErrRecordNotFound = errors.New("player record not found")
)
