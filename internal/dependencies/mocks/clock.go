package mocks

import (
	"time"

	"github.com/fleetgrid/battleship-go/internal/dependencies/clock"
)

// MockClock is a settable clock for tests
type MockClock struct {
	CurrentTime time.Time
}

var _ clock.Clock = (*MockClock)(nil)

// NewMockClock returns a clock frozen at t
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

// Advance moves the frozen time forward by d
func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Set jumps the frozen time to t
func (c *MockClock) Set(t time.Time) {
	c.CurrentTime = t
}
