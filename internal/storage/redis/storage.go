package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetgrid/battleship-go/internal/model"
	"github.com/fleetgrid/battleship-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	data, err := json.Marshal(match)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, matchKey(match.ID), data, s.cfg.MatchTTL).Err()
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	data, err := s.client.Get(ctx, matchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}

	var match model.Match
	if err := json.Unmarshal(data, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.MatchID) error {
	return s.client.Del(ctx, matchKey(id)).Err()
}

// Board operations

func (s *Storage) SaveBoard(ctx context.Context, board *model.Board) error {
	data, err := json.Marshal(board)
	if err != nil {
		return err
	}

	bKey := boardKey(board.MatchID, board.Owner)
	indexKey := boardsForMatchIndexKey(board.MatchID)

	// Pipeline keeps the board and its index entry together
	pipe := s.client.Pipeline()
	pipe.Set(ctx, bKey, data, s.cfg.BoardTTL)
	pipe.SAdd(ctx, indexKey, bKey)
	pipe.Expire(ctx, indexKey, s.cfg.BoardTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetBoard(ctx context.Context, matchID model.MatchID, owner model.PlayerName) (*model.Board, error) {
	data, err := s.client.Get(ctx, boardKey(matchID, owner)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrBoardNotFound
		}
		return nil, err
	}

	var board model.Board
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *Storage) GetBoardsForMatch(ctx context.Context, matchID model.MatchID) ([]*model.Board, error) {
	indexKey := boardsForMatchIndexKey(matchID)

	boardKeys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	if len(boardKeys) == 0 {
		return []*model.Board{}, nil
	}

	values, err := s.client.MGet(ctx, boardKeys...).Result()
	if err != nil {
		return nil, err
	}

	boards := make([]*model.Board, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Board may have expired
		}
		var board model.Board
		if err := json.Unmarshal([]byte(val.(string)), &board); err != nil {
			continue // Skip invalid data
		}
		boards = append(boards, &board)
	}

	return boards, nil
}

func (s *Storage) DeleteBoardsForMatch(ctx context.Context, matchID model.MatchID) error {
	indexKey := boardsForMatchIndexKey(matchID)

	boardKeys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}

	if len(boardKeys) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, key := range boardKeys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}

// Player record operations

func (s *Storage) SavePlayerRecord(ctx context.Context, record *model.PlayerRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	// Records carry win/loss history and never expire
	return s.client.Set(ctx, recordKey(record.Name), data, 0).Err()
}

func (s *Storage) GetPlayerRecord(ctx context.Context, name model.PlayerName) (*model.PlayerRecord, error) {
	data, err := s.client.Get(ctx, recordKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRecordNotFound
		}
		return nil, err
	}

	var record model.PlayerRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Match summary operations

func (s *Storage) SaveMatchSummary(ctx context.Context, summary *model.MatchSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	key := summariesKey()

	// Push newest first and trim to the configured window
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	if s.cfg.SummaryLimit > 0 {
		pipe.LTrim(ctx, key, 0, int64(s.cfg.SummaryLimit-1))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListMatchSummaries(ctx context.Context, limit int) ([]*model.MatchSummary, error) {
	end := int64(-1)
	if limit > 0 {
		end = int64(limit - 1)
	}

	values, err := s.client.LRange(ctx, summariesKey(), 0, end).Result()
	if err != nil {
		return nil, err
	}

	summaries := make([]*model.MatchSummary, 0, len(values))
	for _, val := range values {
		var summary model.MatchSummary
		if err := json.Unmarshal([]byte(val), &summary); err != nil {
			continue
		}
		summaries = append(summaries, &summary)
	}
	return summaries, nil
}
