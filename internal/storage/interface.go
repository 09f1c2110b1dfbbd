package storage

import (
	"context"

	"github.com/fleetgrid/battleship-go/internal/model"
)

// Storage defines the interface for match and record persistence.
// Live connection state never goes through here; that belongs to the
// identity registry, which only exists for the process lifetime.
type Storage interface {
	// Match operations
	SaveMatch(ctx context.Context, match *model.Match) error
	GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error)
	DeleteMatch(ctx context.Context, id model.MatchID) error

	// Board operations
	SaveBoard(ctx context.Context, board *model.Board) error
	GetBoard(ctx context.Context, matchID model.MatchID, owner model.PlayerName) (*model.Board, error)
	GetBoardsForMatch(ctx context.Context, matchID model.MatchID) ([]*model.Board, error)
	DeleteBoardsForMatch(ctx context.Context, matchID model.MatchID) error

	// Player record operations
	SavePlayerRecord(ctx context.Context, record *model.PlayerRecord) error
	GetPlayerRecord(ctx context.Context, name model.PlayerName) (*model.PlayerRecord, error)

	// Match summary operations
	SaveMatchSummary(ctx context.Context, summary *model.MatchSummary) error
	ListMatchSummaries(ctx context.Context, limit int) ([]*model.MatchSummary, error)
}
