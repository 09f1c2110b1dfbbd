package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fleetgrid/battleship-go/internal/dependencies/clock"
	"github.com/fleetgrid/battleship-go/internal/hub"
	"github.com/fleetgrid/battleship-go/internal/metrics"
	"github.com/fleetgrid/battleship-go/internal/model"
	"github.com/fleetgrid/battleship-go/internal/registry"
	"github.com/fleetgrid/battleship-go/internal/services/match"
	"github.com/fleetgrid/battleship-go/internal/services/queue"
	"github.com/fleetgrid/battleship-go/internal/storage"
)

// Config controls session lifecycle behavior.
type Config struct {
	// AbandonTimeout forfeits a match on behalf of a player who stays
	// disconnected this long. Zero disables the timer; disconnected
	// players then hold their slot until they return or the opponent
	// quits.
	AbandonTimeout time.Duration
}

// Manager orchestrates the connection lifecycle around the single
// active match: identify, queue, spectate, play, and reconnect. All
// pairing decisions serialize through the manager's mutex; match
// state changes go through the match controller's own locks.
type Manager struct {
	cfg      Config
	registry *registry.Registry
	queue    *queue.Queue
	matches  match.ControllerInterface
	hubs     *hub.Manager
	storage  storage.Storage
	clock    clock.Clock
	logger   *slog.Logger

	mu          sync.Mutex
	activeMatch model.MatchID
	subscribers map[model.PlayerName]*participant
	timers      map[model.PlayerName]*time.Timer
}

// NewManager creates a new session Manager
func NewManager(
	cfg Config,
	reg *registry.Registry,
	q *queue.Queue,
	matches match.ControllerInterface,
	hubs *hub.Manager,
	store storage.Storage,
	clk clock.Clock,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		cfg:         cfg,
		registry:    reg,
		queue:       q,
		matches:     matches,
		hubs:        hubs,
		storage:     store,
		clock:       clk,
		logger:      logger.With("component", "session"),
		subscribers: make(map[model.PlayerName]*participant),
		timers:      make(map[model.PlayerName]*time.Timer),
	}
}

// participant adapts a registry identity to the hub subscriber
// interface. Delivery inherits the identity's drop-when-disconnected
// behavior.
type participant struct {
	identity *registry.Identity
}

func (p *participant) Name() model.PlayerName {
	return p.identity.Name
}

func (p *participant) Deliver(event model.Event) {
	p.identity.Send(event)
}

// OnConnect handles an identify on a fresh connection. It either
// resumes the identity's match, or places it in the waiting line.
func (m *Manager) OnConnect(ctx context.Context, name model.PlayerName, conn registry.Conn) (*registry.Identity, error) {
	identity, err := m.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	if err := m.registry.Bind(identity, conn); err != nil {
		return nil, err
	}

	metrics.ConnectionsActive.Inc()
	identity.Send(model.Event{
		Type:    model.EventWelcome,
		Payload: model.WelcomePayload{Name: name},
	})

	m.cancelAbandonTimer(name)

	if matchID, ok := identity.CurrentMatch(); ok {
		m.resumeMatch(ctx, identity, matchID)
		return identity, nil
	}

	m.joinLobby(ctx, identity)
	return identity, nil
}

// OnDisconnect handles a dropped or closed connection. A waiting
// identity leaves the queue; a playing identity keeps its slot for
// reconnection.
func (m *Manager) OnDisconnect(ctx context.Context, identity *registry.Identity, conn registry.Conn) {
	if !m.registry.Unbind(identity, conn) {
		// Already rebound by a newer connection
		return
	}

	metrics.ConnectionsActive.Dec()

	if m.queue.Remove(identity.Name) {
		metrics.QueueDepth.Set(float64(m.queue.Len()))
		m.stopSpectating(ctx, identity)
		return
	}

	matchID, ok := identity.CurrentMatch()
	if !ok {
		return
	}

	m.logger.Info("player disconnected mid-match",
		slog.String("player", string(identity.Name)),
		slog.String("match_id", string(matchID)),
	)

	if h := m.hubs.GetHub(matchID); h != nil {
		h.Broadcast(model.Event{
			Type:    model.EventPlayerDisconnected,
			MatchID: matchID,
			Payload: model.PresencePayload{Name: identity.Name, Connected: false},
		})
	}

	m.startAbandonTimer(identity, matchID)
}

// OnCommand dispatches a parsed command for an identified connection.
// Errors are returned for the transport to report; they never affect
// other connections.
func (m *Manager) OnCommand(ctx context.Context, identity *registry.Identity, cmd model.Command) error {
	switch c := cmd.(type) {
	case model.PlaceShipCommand:
		return m.handlePlace(ctx, identity, c)
	case model.FireCommand:
		return m.handleFire(ctx, identity, c)
	case model.ChatCommand:
		return m.handleChat(ctx, identity, c)
	case model.QuitCommand:
		return m.handleQuit(ctx, identity)
	case model.IdentifyCommand:
		// A second identify on a live connection is a protocol error;
		// the transport rejects it before dispatch
		return model.ErrNameInUse
	default:
		return model.ErrNoActiveMatch
	}
}

func (m *Manager) handlePlace(ctx context.Context, identity *registry.Identity, cmd model.PlaceShipCommand) error {
	matchID, ok := identity.CurrentMatch()
	if !ok {
		return model.ErrNoActiveMatch
	}

	result, err := m.matches.PlaceShip(ctx, matchID, identity.Name, cmd.Origin, cmd.Orientation, cmd.Length)
	if err != nil {
		return err
	}

	identity.Send(model.Event{
		Type:    model.EventPlacementOK,
		MatchID: matchID,
		Payload: model.PlacementOKPayload{Ship: result.Ship, Remaining: result.Remaining},
	})

	if result.Started {
		if h := m.hubs.GetHub(matchID); h != nil {
			currentMatch, err := m.matches.GetMatch(ctx, matchID)
			if err != nil {
				return err
			}
			h.Broadcast(model.Event{
				Type:    model.EventMatchStarted,
				MatchID: matchID,
				Payload: model.MatchAnnouncedPayload{
					Players:   currentMatch.Players,
					FirstTurn: result.FirstTurn,
				},
			})
		}
		m.promptTurn(matchID, result.FirstTurn)
	}

	return nil
}

func (m *Manager) handleFire(ctx context.Context, identity *registry.Identity, cmd model.FireCommand) error {
	matchID, ok := identity.CurrentMatch()
	if !ok {
		return model.ErrNoActiveMatch
	}

	result, err := m.matches.Fire(ctx, matchID, identity.Name, cmd.Target)
	if err != nil {
		return err
	}

	metrics.ShotsTotal.WithLabelValues(string(result.Result)).Inc()

	if h := m.hubs.GetHub(matchID); h != nil {
		h.Broadcast(model.Event{
			Type:    model.EventShotResult,
			MatchID: matchID,
			Payload: model.ShotResultPayload{
				Shooter:    result.Shooter,
				Coordinate: result.Target,
				Result:     result.Result,
				SunkShip:   result.SunkShip,
			},
		})
	}

	if result.Finished {
		m.finishMatch(ctx, matchID, "victory")
		return nil
	}

	m.promptTurn(matchID, result.NextTurn)
	return nil
}

func (m *Manager) handleChat(ctx context.Context, identity *registry.Identity, cmd model.ChatCommand) error {
	matchID, ok := identity.CurrentMatch()
	if !ok {
		m.mu.Lock()
		matchID = m.activeMatch
		m.mu.Unlock()
	}
	if matchID == "" {
		return model.ErrNoActiveMatch
	}

	h := m.hubs.GetHub(matchID)
	if h == nil {
		return model.ErrNoActiveMatch
	}

	h.Broadcast(model.Event{
		Type:    model.EventChat,
		MatchID: matchID,
		Payload: model.ChatPayload{From: identity.Name, Message: cmd.Message},
	})
	return nil
}

func (m *Manager) handleQuit(ctx context.Context, identity *registry.Identity) error {
	if matchID, ok := identity.CurrentMatch(); ok {
		if _, err := m.matches.Forfeit(ctx, matchID, identity.Name); err != nil {
			return err
		}
		m.finishMatch(ctx, matchID, "forfeit")
		return nil
	}

	if m.queue.Remove(identity.Name) {
		metrics.QueueDepth.Set(float64(m.queue.Len()))
		m.stopSpectating(ctx, identity)
	}
	return nil
}

// resumeMatch replays authoritative state to a reconnecting player.
func (m *Manager) resumeMatch(ctx context.Context, identity *registry.Identity, matchID model.MatchID) {
	view, err := m.matches.View(ctx, matchID)
	if err != nil {
		m.logger.Error("failed to build replay view",
			slog.String("match_id", string(matchID)),
			slog.String("error", err.Error()),
		)
		m.registry.ClearMatch(identity)
		m.joinLobby(ctx, identity)
		return
	}

	if h := m.hubs.GetHub(matchID); h != nil {
		h.Broadcast(model.Event{
			Type:    model.EventPlayerReconnected,
			MatchID: matchID,
			Payload: model.PresencePayload{Name: identity.Name, Connected: true},
		})
	}

	opponent, _ := view.Match.Opponent(identity.Name)

	replay := model.StateReplayPayload{
		Phase:    view.Match.Phase,
		Opponent: opponent,
		YourTurn: view.Match.Phase == model.PhaseTurn && view.Match.CurrentPlayer() == identity.Name,
	}
	if own := view.Boards[identity.Name]; own != nil {
		replay.YourBoard = own.Render(true)
		replay.ShipsLeft = len(model.Fleet) - len(own.Ships)
	}
	if theirs := view.Boards[opponent]; theirs != nil {
		replay.TargetGrid = theirs.Render(false)
	}

	identity.Send(model.Event{
		Type:    model.EventStateReplay,
		MatchID: matchID,
		Payload: replay,
	})

	m.logger.Info("player resumed match",
		slog.String("player", string(identity.Name)),
		slog.String("match_id", string(matchID)),
	)
}

// joinLobby queues an identity and either starts a match or attaches
// it to the active one as a spectator.
func (m *Manager) joinLobby(ctx context.Context, identity *registry.Identity) {
	pos, err := m.queue.Enqueue(identity.Name)
	if err != nil {
		// Stale queue entry from an unclean disconnect
		m.queue.Remove(identity.Name)
		pos, _ = m.queue.Enqueue(identity.Name)
	}
	metrics.QueueDepth.Set(float64(m.queue.Len()))

	identity.Send(model.Event{
		Type:    model.EventQueued,
		Payload: model.QueuedPayload{Position: pos},
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another connection's pairing may have consumed the enqueue
	// above before we got here; a freshly paired player must not
	// also become a spectator
	if _, ok := identity.CurrentMatch(); ok {
		return
	}

	if m.activeMatch == "" {
		m.tryStartNextLocked(ctx)
		return
	}

	m.spectateLocked(ctx, identity, m.activeMatch)
}

// spectateLocked attaches a waiting identity to the active match's
// broadcasts. Caller holds m.mu.
func (m *Manager) spectateLocked(ctx context.Context, identity *registry.Identity, matchID model.MatchID) {
	currentMatch, err := m.matches.GetMatch(ctx, matchID)
	if err != nil {
		return
	}

	currentMatch.AddSpectator(identity.Name)
	if err := m.storage.SaveMatch(ctx, currentMatch); err != nil {
		m.logger.Error("failed to record spectator",
			slog.String("match_id", string(matchID)),
			slog.String("error", err.Error()),
		)
	}

	h := m.hubs.GetOrCreateHub(matchID)
	h.Register(m.subscriberForLocked(identity))

	identity.Send(model.Event{
		Type:    model.EventSpectating,
		MatchID: matchID,
		Payload: model.SpectatingPayload{
			Players:  currentMatch.Players,
			Position: m.queue.Position(identity.Name),
		},
	})
}

func (m *Manager) stopSpectating(ctx context.Context, identity *registry.Identity) {
	m.mu.Lock()
	matchID := m.activeMatch
	sub := m.subscribers[identity.Name]
	m.mu.Unlock()

	if matchID == "" || sub == nil {
		return
	}

	if h := m.hubs.GetHub(matchID); h != nil {
		h.Unregister(sub)
	}

	if currentMatch, err := m.matches.GetMatch(ctx, matchID); err == nil && currentMatch.HasSpectator(identity.Name) {
		currentMatch.RemoveSpectator(identity.Name)
		_ = m.storage.SaveMatch(ctx, currentMatch)
	}
}

// tryStartNextLocked starts a match for the head pair if the active
// slot is free. Caller holds m.mu.
func (m *Manager) tryStartNextLocked(ctx context.Context) {
	if m.activeMatch != "" {
		return
	}

	pair, ok := m.queue.DequeuePair()
	if !ok {
		return
	}
	metrics.QueueDepth.Set(float64(m.queue.Len()))

	newMatch, err := m.matches.CreateMatch(ctx, pair)
	if err != nil {
		m.logger.Error("failed to create match",
			slog.String("error", err.Error()),
		)
		// Put the pair back at the front-most positions we can manage
		_, _ = m.queue.Enqueue(pair[0])
		_, _ = m.queue.Enqueue(pair[1])
		return
	}

	m.activeMatch = newMatch.ID
	metrics.MatchesStartedTotal.Inc()

	h := m.hubs.GetOrCreateHub(newMatch.ID)

	for i, name := range pair {
		identity, err := m.registry.Get(name)
		if err != nil {
			continue
		}
		m.registry.SetMatch(identity, newMatch.ID)
		h.Register(m.subscriberForLocked(identity))

		opponent := pair[1-i]
		identity.Send(model.Event{
			Type:    model.EventPromoted,
			MatchID: newMatch.ID,
			Payload: model.PromotedPayload{Opponent: opponent},
		})
		identity.Send(model.Event{
			Type:    model.EventMatchStarted,
			MatchID: newMatch.ID,
			Payload: model.MatchStartedPayload{Opponent: opponent, YouGoFirst: i == 0},
		})
	}

	// Everyone still waiting watches the new match
	for _, name := range m.queue.Waiting() {
		identity, err := m.registry.Get(name)
		if err != nil || !identity.Connected() {
			continue
		}
		m.spectateLocked(ctx, identity, newMatch.ID)
	}

	m.logger.Info("match slot filled",
		slog.String("match_id", string(newMatch.ID)),
		slog.String("player_one", string(pair[0])),
		slog.String("player_two", string(pair[1])),
	)
}

// finishMatch persists results, notifies everyone, releases the
// active slot, and re-queues the finished players.
func (m *Manager) finishMatch(ctx context.Context, matchID model.MatchID, reason string) {
	view, err := m.matches.View(ctx, matchID)
	if err != nil {
		m.logger.Error("failed to load finished match",
			slog.String("match_id", string(matchID)),
			slog.String("error", err.Error()),
		)
		return
	}

	metrics.MatchesFinishedTotal.WithLabelValues(reason).Inc()

	if summary, err := m.matches.CreateSummary(ctx, matchID); err == nil {
		if err := m.storage.SaveMatchSummary(ctx, summary); err != nil {
			m.logger.Error("failed to save match summary",
				slog.String("match_id", string(matchID)),
				slog.String("error", err.Error()),
			)
		}
	}

	m.updateRecords(ctx, view)

	boards := make(map[model.PlayerName]string, len(view.Boards))
	for owner, board := range view.Boards {
		boards[owner] = board.Render(true)
	}

	if h := m.hubs.GetHub(matchID); h != nil {
		h.Broadcast(model.Event{
			Type:    model.EventMatchEnded,
			MatchID: matchID,
			Payload: model.MatchEndedPayload{Winner: view.Match.Winner, Boards: boards},
		})
	}

	for _, name := range view.Match.Players {
		m.cancelAbandonTimer(name)
		if identity, err := m.registry.Get(name); err == nil {
			m.registry.ClearMatch(identity)
		}
	}

	if err := m.matches.Cleanup(ctx, matchID); err != nil {
		m.logger.Error("failed to clean up match",
			slog.String("match_id", string(matchID)),
			slog.String("error", err.Error()),
		)
	}
	m.hubs.RemoveHub(matchID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeMatch = ""

	// Finished players go to the back of the line if still around
	for _, name := range view.Match.Players {
		identity, err := m.registry.Get(name)
		if err != nil || !identity.Connected() {
			continue
		}
		if pos, err := m.queue.Enqueue(name); err == nil {
			identity.Send(model.Event{
				Type:    model.EventQueued,
				Payload: model.QueuedPayload{Position: pos},
			})
		}
	}
	metrics.QueueDepth.Set(float64(m.queue.Len()))

	m.tryStartNextLocked(ctx)
}

// updateRecords folds the finished match into both players' win/loss
// and accuracy history.
func (m *Manager) updateRecords(ctx context.Context, view *match.MatchView) {
	for _, name := range view.Match.Players {
		opponent, _ := view.Match.Opponent(name)
		opponentBoard := view.Boards[opponent]

		record, err := m.storage.GetPlayerRecord(ctx, name)
		if err != nil {
			record = &model.PlayerRecord{Name: name, CreatedAt: m.clock.Now()}
		}

		if view.Match.Winner == name {
			record.Wins++
		} else {
			record.Losses++
		}

		// Shots this player fired land on the opponent's board
		if opponentBoard != nil {
			for label := range opponentBoard.Shots {
				record.ShotsFired++
				if c, err := model.ParseCoordinate(label); err == nil && opponentBoard.ShipAt(c) != nil {
					record.Hits++
				}
			}
		}

		record.UpdatedAt = m.clock.Now()
		if err := m.storage.SavePlayerRecord(ctx, record); err != nil {
			m.logger.Error("failed to save player record",
				slog.String("player", string(name)),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (m *Manager) promptTurn(matchID model.MatchID, name model.PlayerName) {
	identity, err := m.registry.Get(name)
	if err != nil {
		return
	}
	identity.Send(model.Event{
		Type:    model.EventTurnPrompt,
		MatchID: matchID,
		Payload: model.TurnPromptPayload{},
	})
}

// subscriberForLocked returns the cached hub adapter for an identity,
// so register and unregister hand the hub the same pointer. Caller
// holds m.mu.
func (m *Manager) subscriberForLocked(identity *registry.Identity) *participant {
	sub, ok := m.subscribers[identity.Name]
	if !ok {
		sub = &participant{identity: identity}
		m.subscribers[identity.Name] = sub
	}
	return sub
}

// startAbandonTimer forfeits on behalf of a player who does not return
// within the configured window.
func (m *Manager) startAbandonTimer(identity *registry.Identity, matchID model.MatchID) {
	if m.cfg.AbandonTimeout <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.timers[identity.Name]; ok {
		existing.Stop()
	}
	m.timers[identity.Name] = time.AfterFunc(m.cfg.AbandonTimeout, func() {
		if identity.Connected() {
			return
		}
		current, ok := identity.CurrentMatch()
		if !ok || current != matchID {
			return
		}
		ctx := context.Background()
		if _, err := m.matches.Forfeit(ctx, matchID, identity.Name); err != nil {
			return
		}
		m.logger.Info("match abandoned",
			slog.String("player", string(identity.Name)),
			slog.String("match_id", string(matchID)),
		)
		m.finishMatch(ctx, matchID, "abandoned")
	})
}

func (m *Manager) cancelAbandonTimer(name model.PlayerName) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if timer, ok := m.timers[name]; ok {
		timer.Stop()
		delete(m.timers, name)
	}
}

// ActiveMatch returns the ID of the match currently holding the slot.
func (m *Manager) ActiveMatch() (model.MatchID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeMatch, m.activeMatch != ""
}
