package queue

import (
	"log/slog"
	"sync"

	"github.com/fleetgrid/battleship-go/internal/model"
)

// Queue is the FIFO waiting line for players who want a match. The
// two players at the head become opponents as soon as the active
// match slot frees up; everyone behind them spectates.
type Queue struct {
	logger *slog.Logger

	mu      sync.Mutex
	waiting []model.PlayerName
}

func New(logger *slog.Logger) *Queue {
	return &Queue{
		logger: logger.With("component", "queue"),
	}
}

// Enqueue appends a player and returns their 1-based position.
func (q *Queue) Enqueue(name model.PlayerName) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, waiting := range q.waiting {
		if waiting == name {
			return 0, model.ErrAlreadyQueued
		}
	}

	q.waiting = append(q.waiting, name)
	pos := len(q.waiting)
	q.logger.Debug("player queued", "player", name, "position", pos)
	return pos, nil
}

// DequeuePair removes and returns the two players at the head of the
// queue. It returns false if fewer than two players are waiting.
func (q *Queue) DequeuePair() ([2]model.PlayerName, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiting) < 2 {
		return [2]model.PlayerName{}, false
	}

	pair := [2]model.PlayerName{q.waiting[0], q.waiting[1]}
	q.waiting = q.waiting[2:]
	return pair, true
}

// Remove drops a player from the queue, wherever they are in line.
// It reports whether the player was present.
func (q *Queue) Remove(name model.PlayerName) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, waiting := range q.waiting {
		if waiting == name {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			q.logger.Debug("player left queue", "player", name)
			return true
		}
	}
	return false
}

// Position returns a player's 1-based position, or 0 if not queued.
func (q *Queue) Position(name model.PlayerName) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, waiting := range q.waiting {
		if waiting == name {
			return i + 1
		}
	}
	return 0
}

// Waiting returns a snapshot of the queue in order.
func (q *Queue) Waiting() []model.PlayerName {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]model.PlayerName, len(q.waiting))
	copy(snapshot, q.waiting)
	return snapshot
}

// Len returns the number of waiting players.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}
