package memory

import (
	"context"
	"sync"

	"github.com/fleetgrid/battleship-go/internal/model"
	"github.com/fleetgrid/battleship-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Entities are copied on save and on read, so callers never share
// mutable state through the store — the same isolation the redis
// backend gets from its JSON round-trip.
type Storage struct {
	mu sync.RWMutex

	matches   map[model.MatchID]*model.Match
	boards    map[boardKey]*model.Board
	records   map[model.PlayerName]*model.PlayerRecord
	summaries []*model.MatchSummary
}

type boardKey struct {
	matchID model.MatchID
	owner   model.PlayerName
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		matches: make(map[model.MatchID]*model.Match),
		boards:  make(map[boardKey]*model.Board),
		records: make(map[model.PlayerName]*model.PlayerRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[match.ID] = match.Clone()
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return match.Clone(), nil
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.MatchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, id)
	return nil
}

// Board operations

func (s *Storage) SaveBoard(ctx context.Context, board *model.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := boardKey{matchID: board.MatchID, owner: board.Owner}
	s.boards[key] = board.Clone()
	return nil
}

func (s *Storage) GetBoard(ctx context.Context, matchID model.MatchID, owner model.PlayerName) (*model.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[boardKey{matchID: matchID, owner: owner}]
	if !ok {
		return nil, model.ErrBoardNotFound
	}
	return board.Clone(), nil
}

func (s *Storage) GetBoardsForMatch(ctx context.Context, matchID model.MatchID) ([]*model.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var boards []*model.Board
	for key, board := range s.boards {
		if key.matchID == matchID {
			boards = append(boards, board.Clone())
		}
	}
	return boards, nil
}

func (s *Storage) DeleteBoardsForMatch(ctx context.Context, matchID model.MatchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.boards {
		if key.matchID == matchID {
			delete(s.boards, key)
		}
	}
	return nil
}

// Player record operations

func (s *Storage) SavePlayerRecord(ctx context.Context, record *model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	s.records[record.Name] = &clone
	return nil
}

func (s *Storage) GetPlayerRecord(ctx context.Context, name model.PlayerName) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[name]
	if !ok {
		return nil, model.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

// Match summary operations

func (s *Storage) SaveMatchSummary(ctx context.Context, summary *model.MatchSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *summary
	s.summaries = append(s.summaries, &clone)
	return nil
}

func (s *Storage) ListMatchSummaries(ctx context.Context, limit int) ([]*model.MatchSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.summaries)
	if limit > 0 && limit < n {
		n = limit
	}

	// Most recent first
	result := make([]*model.MatchSummary, 0, n)
	for i := len(s.summaries) - 1; i >= 0 && len(result) < n; i-- {
		clone := *s.summaries[i]
		result = append(result, &clone)
	}
	return result, nil
}
