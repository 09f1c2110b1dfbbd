package match

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fleetgrid/battleship-go/internal/dependencies/clock"
	"github.com/fleetgrid/battleship-go/internal/dependencies/random"
	"github.com/fleetgrid/battleship-go/internal/model"
	"github.com/fleetgrid/battleship-go/internal/storage"
)

// Controller manages the match state machine: placement, alternating
// turns, and completion. All mutation goes through a per-match lock so
// concurrent commands from both players serialize cleanly.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[model.MatchID]*sync.Mutex
}

// NewController creates a new match Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger,
		locks:   make(map[model.MatchID]*sync.Mutex),
	}
}

// PlaceResult reports the outcome of a successful ship placement.
type PlaceResult struct {
	Ship      string
	Remaining int
	// Started is true when this placement completed both fleets and
	// the match moved to the turn phase.
	Started bool
	// FirstTurn is set when Started is true.
	FirstTurn model.PlayerName
}

// FireResult reports the outcome of a shot.
type FireResult struct {
	Shooter  model.PlayerName
	Target   model.Coordinate
	Result   model.ShotResult
	SunkShip string
	// Finished is true when the shot sank the last ship.
	Finished bool
	Winner   model.PlayerName
	// NextTurn is the player to move after this shot. On a repeated
	// coordinate the turn does not pass.
	NextTurn model.PlayerName
}

// MatchView is a read-only snapshot used for state replay and the
// status API.
type MatchView struct {
	Match     *model.Match
	Boards    map[model.PlayerName]*model.Board
	ShipsLeft map[model.PlayerName]int
}

// CreateMatch initializes a match between two players. The first
// player of the pair moves first once placement completes.
func (c *Controller) CreateMatch(ctx context.Context, players [2]model.PlayerName) (*model.Match, error) {
	now := c.clock.Now()
	matchID := model.MatchID(c.random.String(12, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"))

	match := &model.Match{
		ID:        matchID,
		Phase:     model.PhasePlacement,
		Players:   players,
		TurnIdx:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, player := range players {
		if err := c.storage.SaveBoard(ctx, model.NewBoard(matchID, player)); err != nil {
			return nil, err
		}
	}

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		c.logger.Error("failed to save match",
			slog.String("match_id", string(matchID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("match created",
		slog.String("match_id", string(matchID)),
		slog.String("player_one", string(players[0])),
		slog.String("player_two", string(players[1])),
	)

	return match, nil
}

// GetMatch retrieves a match by ID
func (c *Controller) GetMatch(ctx context.Context, matchID model.MatchID) (*model.Match, error) {
	return c.storage.GetMatch(ctx, matchID)
}

// PlaceShip places one ship on a player's board during the placement
// phase. When both fleets are complete the match moves to the turn
// phase.
func (c *Controller) PlaceShip(ctx context.Context, matchID model.MatchID, player model.PlayerName, origin model.Coordinate, orientation model.Orientation, length int) (*PlaceResult, error) {
	unlock := c.lockMatch(matchID)
	defer unlock()

	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if !match.HasPlayer(player) {
		return nil, model.ErrNotInMatch
	}
	if match.Phase == model.PhaseFinished {
		return nil, model.ErrMatchFinished
	}
	if match.Phase != model.PhasePlacement {
		return nil, model.ErrNotYourPhase
	}

	board, err := c.storage.GetBoard(ctx, matchID, player)
	if err != nil {
		return nil, err
	}

	placement, err := board.PlaceShip(origin, orientation, length)
	if err != nil {
		return nil, err
	}

	if err := c.storage.SaveBoard(ctx, board); err != nil {
		return nil, err
	}

	result := &PlaceResult{
		Ship:      placement.Name,
		Remaining: len(model.Fleet) - len(board.Ships),
	}

	if board.IsReady() {
		ready, err := c.allBoardsReady(ctx, matchID)
		if err != nil {
			return nil, err
		}
		if ready {
			match.Phase = model.PhaseTurn
			match.TurnIdx = 0
			match.StartedAt = c.clock.Now()
			match.UpdatedAt = match.StartedAt
			if err := c.storage.SaveMatch(ctx, match); err != nil {
				return nil, err
			}
			result.Started = true
			result.FirstTurn = match.CurrentPlayer()

			c.logger.Info("match started",
				slog.String("match_id", string(matchID)),
				slog.String("first_turn", string(result.FirstTurn)),
			)
		}
	}

	return result, nil
}

// Fire resolves a shot at the opponent's board. Hits and misses pass
// the turn; a repeated coordinate does not.
func (c *Controller) Fire(ctx context.Context, matchID model.MatchID, player model.PlayerName, target model.Coordinate) (*FireResult, error) {
	unlock := c.lockMatch(matchID)
	defer unlock()

	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if !match.HasPlayer(player) {
		return nil, model.ErrNotInMatch
	}
	if match.Phase == model.PhaseFinished {
		return nil, model.ErrMatchFinished
	}
	if match.Phase != model.PhaseTurn {
		return nil, model.ErrNotYourPhase
	}
	if match.CurrentPlayer() != player {
		return nil, model.ErrNotYourTurn
	}

	opponent, _ := match.Opponent(player)
	board, err := c.storage.GetBoard(ctx, matchID, opponent)
	if err != nil {
		return nil, err
	}

	shot, sunk := board.ReceiveShot(target)

	result := &FireResult{
		Shooter:  player,
		Target:   target,
		Result:   shot,
		SunkShip: sunk,
		NextTurn: player,
	}

	if shot == model.ShotAlreadyTried {
		// No state changed; the shooter goes again
		return result, nil
	}

	if err := c.storage.SaveBoard(ctx, board); err != nil {
		return nil, err
	}

	if board.AllSunk() {
		match.Phase = model.PhaseFinished
		match.Winner = player
		match.FinishedAt = c.clock.Now()
		match.UpdatedAt = match.FinishedAt
		result.Finished = true
		result.Winner = player

		c.logger.Info("match finished",
			slog.String("match_id", string(matchID)),
			slog.String("winner", string(player)),
		)
	} else {
		match.TurnIdx = 1 - match.TurnIdx
		match.UpdatedAt = c.clock.Now()
		result.NextTurn = match.CurrentPlayer()
	}

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		return nil, err
	}

	return result, nil
}

// Forfeit ends a match early, awarding the win to the opponent of the
// forfeiting player. Forfeiting an already-finished match is a no-op.
func (c *Controller) Forfeit(ctx context.Context, matchID model.MatchID, player model.PlayerName) (*model.Match, error) {
	unlock := c.lockMatch(matchID)
	defer unlock()

	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if !match.HasPlayer(player) {
		return nil, model.ErrNotInMatch
	}
	if match.Phase == model.PhaseFinished {
		return match, nil
	}

	opponent, _ := match.Opponent(player)
	match.Phase = model.PhaseFinished
	match.Winner = opponent
	match.FinishedAt = c.clock.Now()
	match.UpdatedAt = match.FinishedAt

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		return nil, err
	}

	c.logger.Info("match forfeited",
		slog.String("match_id", string(matchID)),
		slog.String("forfeited_by", string(player)),
		slog.String("winner", string(opponent)),
	)

	return match, nil
}

// View returns a snapshot of the match and its boards. The per-match
// lock makes the snapshot consistent with in-flight shots; the storage
// backends return copies, so the view stays stable after the lock is
// released.
func (c *Controller) View(ctx context.Context, matchID model.MatchID) (*MatchView, error) {
	unlock := c.lockMatch(matchID)
	defer unlock()

	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	boards, err := c.storage.GetBoardsForMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	view := &MatchView{
		Match:     match,
		Boards:    make(map[model.PlayerName]*model.Board, len(boards)),
		ShipsLeft: make(map[model.PlayerName]int, len(boards)),
	}
	for _, board := range boards {
		view.Boards[board.Owner] = board
		afloat := 0
		for _, ship := range board.Ships {
			sunkCount := 0
			for _, cell := range ship.Cells() {
				if board.Shots[cell.Label()] {
					sunkCount++
				}
			}
			if sunkCount < ship.Length {
				afloat++
			}
		}
		view.ShipsLeft[board.Owner] = afloat
	}

	return view, nil
}

// CreateSummary builds the historical record for a finished match.
func (c *Controller) CreateSummary(ctx context.Context, matchID model.MatchID) (*model.MatchSummary, error) {
	unlock := c.lockMatch(matchID)
	defer unlock()

	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Phase != model.PhaseFinished {
		return nil, model.ErrMatchFinished
	}

	boards, err := c.storage.GetBoardsForMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	shots := 0
	for _, board := range boards {
		shots += len(board.Shots)
	}

	loser, _ := match.Opponent(match.Winner)

	return &model.MatchSummary{
		ID:         matchID,
		Players:    match.Players,
		Winner:     match.Winner,
		Loser:      loser,
		Shots:      shots,
		StartedAt:  match.StartedAt,
		FinishedAt: match.FinishedAt,
	}, nil
}

// Cleanup removes the stored boards and lock for a finished match.
// The match record itself is kept until its TTL expires.
func (c *Controller) Cleanup(ctx context.Context, matchID model.MatchID) error {
	if err := c.storage.DeleteBoardsForMatch(ctx, matchID); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.locks, matchID)
	c.mu.Unlock()
	return nil
}

func (c *Controller) lockMatch(matchID model.MatchID) func() {
	c.mu.Lock()
	lock, ok := c.locks[matchID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[matchID] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (c *Controller) allBoardsReady(ctx context.Context, matchID model.MatchID) (bool, error) {
	boards, err := c.storage.GetBoardsForMatch(ctx, matchID)
	if err != nil {
		return false, err
	}
	if len(boards) < 2 {
		return false, nil
	}
	for _, board := range boards {
		if !board.IsReady() {
			return false, nil
		}
	}
	return true, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateMatch(ctx context.Context, players [2]model.PlayerName) (*model.Match, error)
	GetMatch(ctx context.Context, matchID model.MatchID) (*model.Match, error)
	PlaceShip(ctx context.Context, matchID model.MatchID, player model.PlayerName, origin model.Coordinate, orientation model.Orientation, length int) (*PlaceResult, error)
	Fire(ctx context.Context, matchID model.MatchID, player model.PlayerName, target model.Coordinate) (*FireResult, error)
	Forfeit(ctx context.Context, matchID model.MatchID, player model.PlayerName) (*model.Match, error)
	View(ctx context.Context, matchID model.MatchID) (*MatchView, error)
	CreateSummary(ctx context.Context, matchID model.MatchID) (*model.MatchSummary, error)
	Cleanup(ctx context.Context, matchID model.MatchID) error
}

var _ ControllerInterface = (*Controller)(nil)
