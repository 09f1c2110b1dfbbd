package redis

import (
	"fmt"

	"github.com/fleetgrid/battleship-go/internal/model"
)

// Key prefix for all battleship data
const keyPrefix = "battleship"

// matchKey returns the Redis key for a Match
func matchKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, id)
}

// boardKey returns the Redis key for a Board
func boardKey(matchID model.MatchID, owner model.PlayerName) string {
	return fmt.Sprintf("%s:board:%s:%s", keyPrefix, matchID, owner)
}

// boardsForMatchIndexKey returns the Redis key for the SET of boards in a match
func boardsForMatchIndexKey(matchID model.MatchID) string {
	return fmt.Sprintf("%s:idx:boards_for_match:%s", keyPrefix, matchID)
}

// recordKey returns the Redis key for a PlayerRecord
func recordKey(name model.PlayerName) string {
	return fmt.Sprintf("%s:record:%s", keyPrefix, name)
}

// summariesKey returns the Redis key for the LIST of recent match summaries
func summariesKey() string {
	return fmt.Sprintf("%s:summaries", keyPrefix)
}
