package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// placeFleet places the full required fleet in non-overlapping rows
func placeFleet(t *testing.T, b *Board) {
	t.Helper()
	for i, class := range Fleet {
		_, err := b.PlaceShip(Coordinate{Row: i, Col: 0}, Horizontal, class.Length)
		require.NoError(t, err)
	}
}

func TestPlaceShipAssignsFleetNames(t *testing.T) {
	b := NewBoard("m1", "alice")

	p, err := b.PlaceShip(Coordinate{Row: 0, Col: 0}, Horizontal, 3)
	require.NoError(t, err)
	assert.Equal(t, "Cruiser", p.Name)

	p, err = b.PlaceShip(Coordinate{Row: 1, Col: 0}, Horizontal, 3)
	require.NoError(t, err)
	assert.Equal(t, "Submarine", p.Name)

	_, err = b.PlaceShip(Coordinate{Row: 2, Col: 0}, Horizontal, 3)
	assert.ErrorIs(t, err, ErrWrongShipSize)
}

func TestPlaceShipValidation(t *testing.T) {
	tests := []struct {
		name        string
		origin      Coordinate
		orientation Orientation
		length      int
		wantErr     error
	}{
		{"horizontal off right edge", Coordinate{Row: 0, Col: 6}, Horizontal, 5, ErrOutOfBounds},
		{"vertical off bottom edge", Coordinate{Row: 6, Col: 0}, Vertical, 5, ErrOutOfBounds},
		{"negative origin", Coordinate{Row: -1, Col: 0}, Horizontal, 5, ErrOutOfBounds},
		{"length not in fleet", Coordinate{Row: 0, Col: 0}, Horizontal, 6, ErrWrongShipSize},
		{"fits exactly at edge", Coordinate{Row: 0, Col: 5}, Horizontal, 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard("m1", "alice")
			_, err := b.PlaceShip(tt.origin, tt.orientation, tt.length)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlaceShipRejectsOverlap(t *testing.T) {
	b := NewBoard("m1", "alice")
	_, err := b.PlaceShip(Coordinate{Row: 0, Col: 0}, Horizontal, 5)
	require.NoError(t, err)

	_, err = b.PlaceShip(Coordinate{Row: 0, Col: 4}, Vertical, 4)
	assert.ErrorIs(t, err, ErrShipOverlap)
	assert.Len(t, b.Ships, 1)
}

func TestPlaceShipRejectsSixthShip(t *testing.T) {
	b := NewBoard("m1", "alice")
	placeFleet(t, b)

	_, err := b.PlaceShip(Coordinate{Row: 9, Col: 0}, Horizontal, 2)
	assert.ErrorIs(t, err, ErrFleetComplete)
}

func TestIsReadyOnlyWithFullFleet(t *testing.T) {
	b := NewBoard("m1", "alice")
	for i, class := range Fleet {
		assert.False(t, b.IsReady())
		_, err := b.PlaceShip(Coordinate{Row: i, Col: 0}, Horizontal, class.Length)
		require.NoError(t, err)
	}
	assert.True(t, b.IsReady())
}

func TestReceiveShotOutcomes(t *testing.T) {
	b := NewBoard("m1", "alice")
	_, err := b.PlaceShip(Coordinate{Row: 0, Col: 0}, Horizontal, 2) // Destroyer at A1-A2
	require.NoError(t, err)

	result, sunk := b.ReceiveShot(Coordinate{Row: 5, Col: 5})
	assert.Equal(t, ShotMiss, result)
	assert.Empty(t, sunk)

	result, sunk = b.ReceiveShot(Coordinate{Row: 0, Col: 0})
	assert.Equal(t, ShotHit, result)
	assert.Empty(t, sunk)

	// Final cell sinks the ship and names it
	result, sunk = b.ReceiveShot(Coordinate{Row: 0, Col: 1})
	assert.Equal(t, ShotHit, result)
	assert.Equal(t, "Destroyer", sunk)
	assert.True(t, b.AllSunk())
}

func TestReceiveShotAlreadyTriedIsIdempotent(t *testing.T) {
	b := NewBoard("m1", "alice")
	_, err := b.PlaceShip(Coordinate{Row: 0, Col: 0}, Horizontal, 2)
	require.NoError(t, err)

	target := Coordinate{Row: 0, Col: 0}
	first, _ := b.ReceiveShot(target)
	require.Equal(t, ShotHit, first)

	sunkBefore := b.AllSunk()
	repeat, sunk := b.ReceiveShot(target)
	assert.Equal(t, ShotAlreadyTried, repeat)
	assert.Empty(t, sunk)
	assert.Equal(t, sunkBefore, b.AllSunk())
}

func TestAllSunkRequiresEveryShip(t *testing.T) {
	b := NewBoard("m1", "alice")
	placeFleet(t, b)

	// Sink everything except the last cell of the Destroyer
	for i, class := range Fleet {
		for col := 0; col < class.Length; col++ {
			if i == len(Fleet)-1 && col == class.Length-1 {
				continue
			}
			b.ReceiveShot(Coordinate{Row: i, Col: col})
		}
	}
	assert.False(t, b.AllSunk())

	last := Fleet[len(Fleet)-1]
	result, sunk := b.ReceiveShot(Coordinate{Row: len(Fleet) - 1, Col: last.Length - 1})
	assert.Equal(t, ShotHit, result)
	assert.Equal(t, last.Name, sunk)
	assert.True(t, b.AllSunk())
}

func TestRenderMarksCells(t *testing.T) {
	b := NewBoard("m1", "alice")
	_, err := b.PlaceShip(Coordinate{Row: 0, Col: 0}, Horizontal, 2)
	require.NoError(t, err)
	b.ReceiveShot(Coordinate{Row: 0, Col: 0}) // hit
	b.ReceiveShot(Coordinate{Row: 1, Col: 0}) // miss

	hidden := b.Render(false)
	assert.Contains(t, hidden, "X")
	assert.Contains(t, hidden, "o")
	assert.NotContains(t, hidden, "S")

	revealed := b.Render(true)
	assert.Contains(t, revealed, "S")
}
