package match

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/fleetgrid/battleship-go/internal/dependencies/mocks"
	"github.com/fleetgrid/battleship-go/internal/model"
	"github.com/fleetgrid/battleship-go/internal/storage/memory"
	"github.com/fleetgrid/battleship-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	controller *Controller
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.random.QueueString("MATCH0000001", "MATCH0000002")
	s.controller = NewController(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) createMatch() *model.Match {
	match, err := s.controller.CreateMatch(s.ctx, [2]model.PlayerName{"alice", "bob"})
	s.Require().NoError(err)
	return match
}

// placeFleet puts the standard fleet on one player's board in rows A-E
func (s *ControllerSuite) placeFleet(matchID model.MatchID, player model.PlayerName) *PlaceResult {
	var last *PlaceResult
	for i, class := range model.Fleet {
		result, err := s.controller.PlaceShip(s.ctx, matchID, player,
			model.Coordinate{Row: i, Col: 0}, model.Horizontal, class.Length)
		s.Require().NoError(err)
		last = result
	}
	return last
}

func (s *ControllerSuite) startedMatch() *model.Match {
	match := s.createMatch()
	s.placeFleet(match.ID, "alice")
	result := s.placeFleet(match.ID, "bob")
	s.Require().True(result.Started)

	started, err := s.controller.GetMatch(s.ctx, match.ID)
	s.Require().NoError(err)
	return started
}

// CreateMatch tests

func (s *ControllerSuite) TestCreateMatch() {
	match := s.createMatch()

	s.Equal(model.PhasePlacement, match.Phase)
	s.Equal(model.PlayerName("alice"), match.Players[0])
	s.Equal(model.PlayerName("bob"), match.Players[1])

	// Both players get empty boards up front
	boards, err := s.storage.GetBoardsForMatch(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Len(boards, 2)
}

// PlaceShip tests

func (s *ControllerSuite) TestPlaceShipProgress() {
	match := s.createMatch()

	result, err := s.controller.PlaceShip(s.ctx, match.ID, "alice",
		model.Coordinate{Row: 0, Col: 0}, model.Horizontal, 5)
	s.Require().NoError(err)
	s.Equal("Carrier", result.Ship)
	s.Equal(4, result.Remaining)
	s.False(result.Started)
}

func (s *ControllerSuite) TestPlaceShipRejectsOutsider() {
	match := s.createMatch()

	_, err := s.controller.PlaceShip(s.ctx, match.ID, "mallory",
		model.Coordinate{Row: 0, Col: 0}, model.Horizontal, 5)
	s.ErrorIs(err, model.ErrNotInMatch)
}

func (s *ControllerSuite) TestPlaceShipRejectsOverlap() {
	match := s.createMatch()

	_, err := s.controller.PlaceShip(s.ctx, match.ID, "alice",
		model.Coordinate{Row: 0, Col: 0}, model.Horizontal, 5)
	s.Require().NoError(err)

	_, err = s.controller.PlaceShip(s.ctx, match.ID, "alice",
		model.Coordinate{Row: 0, Col: 2}, model.Vertical, 4)
	s.ErrorIs(err, model.ErrShipOverlap)
}

func (s *ControllerSuite) TestPlacementCompletesAndStartsMatch() {
	match := s.createMatch()

	s.placeFleet(match.ID, "alice")

	// Alice done, bob not: match must still be in placement
	current, err := s.controller.GetMatch(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Equal(model.PhasePlacement, current.Phase)

	result := s.placeFleet(match.ID, "bob")
	s.True(result.Started)
	s.Equal(model.PlayerName("alice"), result.FirstTurn)

	current, err = s.controller.GetMatch(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseTurn, current.Phase)
	s.Equal(s.clock.Now(), current.StartedAt)
}

func (s *ControllerSuite) TestPlaceShipAfterStartRejected() {
	match := s.startedMatch()

	_, err := s.controller.PlaceShip(s.ctx, match.ID, "alice",
		model.Coordinate{Row: 9, Col: 0}, model.Horizontal, 2)
	s.ErrorIs(err, model.ErrNotYourPhase)
}

// Fire tests

func (s *ControllerSuite) TestFireDuringPlacementRejected() {
	match := s.createMatch()

	_, err := s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 0, Col: 0})
	s.ErrorIs(err, model.ErrNotYourPhase)
}

func (s *ControllerSuite) TestFireOutOfTurnRejected() {
	match := s.startedMatch()

	_, err := s.controller.Fire(s.ctx, match.ID, "bob", model.Coordinate{Row: 0, Col: 0})
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *ControllerSuite) TestFireHitPassesTurn() {
	match := s.startedMatch()

	// Bob's Carrier occupies A1-A5
	result, err := s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 0, Col: 0})
	s.Require().NoError(err)
	s.Equal(model.ShotHit, result.Result)
	s.Empty(result.SunkShip)
	s.Equal(model.PlayerName("bob"), result.NextTurn)
}

func (s *ControllerSuite) TestFireMissPassesTurn() {
	match := s.startedMatch()

	result, err := s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 9, Col: 9})
	s.Require().NoError(err)
	s.Equal(model.ShotMiss, result.Result)
	s.Equal(model.PlayerName("bob"), result.NextTurn)
}

func (s *ControllerSuite) TestFireRepeatKeepsTurn() {
	match := s.startedMatch()

	_, err := s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 9, Col: 9})
	s.Require().NoError(err)
	_, err = s.controller.Fire(s.ctx, match.ID, "bob", model.Coordinate{Row: 9, Col: 9})
	s.Require().NoError(err)

	// Alice already fired at J10; repeating must not pass the turn
	result, err := s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 9, Col: 9})
	s.Require().NoError(err)
	s.Equal(model.ShotAlreadyTried, result.Result)
	s.Equal(model.PlayerName("alice"), result.NextTurn)

	result, err = s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 9, Col: 8})
	s.Require().NoError(err)
	s.Equal(model.ShotMiss, result.Result)
}

func (s *ControllerSuite) TestFireSinkReportsShipName() {
	match := s.startedMatch()

	// Alternate: alice works through bob's Destroyer at E1-E2,
	// bob wastes shots in open water
	var result *FireResult
	var err error
	aliceShots := []model.Coordinate{{Row: 4, Col: 0}, {Row: 4, Col: 1}}
	for i, target := range aliceShots {
		result, err = s.controller.Fire(s.ctx, match.ID, "alice", target)
		s.Require().NoError(err)
		_, err = s.controller.Fire(s.ctx, match.ID, "bob", model.Coordinate{Row: 9, Col: i})
		s.Require().NoError(err)
	}

	s.Equal(model.ShotHit, result.Result)
	s.Equal("Destroyer", result.SunkShip)
	s.False(result.Finished)
}

func (s *ControllerSuite) TestFireLastShipFinishesMatch() {
	match := s.startedMatch()

	// Sink bob's entire fleet; bob answers with misses in rows G-J
	var result *FireResult
	var err error
	wasted := 0
	for row, class := range model.Fleet {
		for col := 0; col < class.Length; col++ {
			result, err = s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: row, Col: col})
			s.Require().NoError(err)
			if result.Finished {
				break
			}
			_, err = s.controller.Fire(s.ctx, match.ID, "bob",
				model.Coordinate{Row: 6 + wasted/10, Col: wasted % 10})
			s.Require().NoError(err)
			wasted++
		}
	}

	s.Require().True(result.Finished)
	s.Equal(model.PlayerName("alice"), result.Winner)
	s.Equal("Destroyer", result.SunkShip)

	finished, err := s.controller.GetMatch(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseFinished, finished.Phase)
	s.Equal(model.PlayerName("alice"), finished.Winner)
}

func (s *ControllerSuite) TestFireAfterFinishRejected() {
	match := s.startedMatch()

	_, err := s.controller.Forfeit(s.ctx, match.ID, "bob")
	s.Require().NoError(err)

	_, err = s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 0, Col: 0})
	s.ErrorIs(err, model.ErrMatchFinished)
}

// Forfeit tests

func (s *ControllerSuite) TestForfeitAwardsOpponent() {
	match := s.startedMatch()

	finished, err := s.controller.Forfeit(s.ctx, match.ID, "alice")
	s.Require().NoError(err)
	s.Equal(model.PhaseFinished, finished.Phase)
	s.Equal(model.PlayerName("bob"), finished.Winner)
}

func (s *ControllerSuite) TestForfeitDuringPlacement() {
	match := s.createMatch()

	finished, err := s.controller.Forfeit(s.ctx, match.ID, "bob")
	s.Require().NoError(err)
	s.Equal(model.PlayerName("alice"), finished.Winner)
}

func (s *ControllerSuite) TestForfeitFinishedMatchIsNoOp() {
	match := s.startedMatch()

	_, err := s.controller.Forfeit(s.ctx, match.ID, "alice")
	s.Require().NoError(err)

	// The original winner must stand
	finished, err := s.controller.Forfeit(s.ctx, match.ID, "bob")
	s.Require().NoError(err)
	s.Equal(model.PlayerName("bob"), finished.Winner)
}

// View tests

func (s *ControllerSuite) TestViewShipsLeft() {
	match := s.startedMatch()

	// Sink bob's Destroyer (E1-E2)
	_, err := s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 4, Col: 0})
	s.Require().NoError(err)
	_, err = s.controller.Fire(s.ctx, match.ID, "bob", model.Coordinate{Row: 9, Col: 9})
	s.Require().NoError(err)
	_, err = s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 4, Col: 1})
	s.Require().NoError(err)

	view, err := s.controller.View(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Equal(4, view.ShipsLeft["bob"])
	s.Equal(5, view.ShipsLeft["alice"])
	s.Len(view.Boards, 2)
}

func (s *ControllerSuite) TestViewSnapshotUnaffectedByLaterShots() {
	match := s.startedMatch()

	view, err := s.controller.View(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Empty(view.Boards["bob"].Shots)
	s.Equal(5, view.ShipsLeft["bob"])

	_, err = s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 0, Col: 0})
	s.Require().NoError(err)

	// The snapshot handed out before the shot must not change under the caller
	s.Empty(view.Boards["bob"].Shots)
	s.Equal(5, view.ShipsLeft["bob"])
}

func (s *ControllerSuite) TestViewDuringLiveFire() {
	match := s.startedMatch()

	// Both fleets sit in rows A-E, so rows G and H are open water and
	// every shot misses, handing the turn back and forth
	done := make(chan struct{})
	go func() {
		defer close(done)
		for col := 0; col < model.BoardSize; col++ {
			_, err := s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 6, Col: col})
			s.NoError(err)
			_, err = s.controller.Fire(s.ctx, match.ID, "bob", model.Coordinate{Row: 7, Col: col})
			s.NoError(err)
		}
	}()

	for i := 0; i < 50; i++ {
		view, err := s.controller.View(s.ctx, match.ID)
		s.Require().NoError(err)
		for _, board := range view.Boards {
			_ = board.Render(true)
		}
	}
	<-done
}

// Summary tests

func (s *ControllerSuite) TestCreateSummaryRequiresFinished() {
	match := s.startedMatch()

	_, err := s.controller.CreateSummary(s.ctx, match.ID)
	s.ErrorIs(err, model.ErrMatchFinished)
}

func (s *ControllerSuite) TestCreateSummary() {
	match := s.startedMatch()

	_, err := s.controller.Fire(s.ctx, match.ID, "alice", model.Coordinate{Row: 9, Col: 9})
	s.Require().NoError(err)
	_, err = s.controller.Forfeit(s.ctx, match.ID, "bob")
	s.Require().NoError(err)

	summary, err := s.controller.CreateSummary(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Equal(model.PlayerName("alice"), summary.Winner)
	s.Equal(model.PlayerName("bob"), summary.Loser)
	s.Equal(1, summary.Shots)
}

// Cleanup tests

func (s *ControllerSuite) TestCleanupRemovesBoards() {
	match := s.startedMatch()

	_, err := s.controller.Forfeit(s.ctx, match.ID, "bob")
	s.Require().NoError(err)

	s.Require().NoError(s.controller.Cleanup(s.ctx, match.ID))

	boards, err := s.storage.GetBoardsForMatch(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Empty(boards)
}
