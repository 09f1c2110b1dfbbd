package hub

import (
	"log/slog"
	"sync"

	"github.com/fleetgrid/battleship-go/internal/metrics"
	"github.com/fleetgrid/battleship-go/internal/model"
)

// Subscriber receives events broadcast to a match. Send must not
// block; implementations drop rather than stall the hub loop.
type Subscriber interface {
	Name() model.PlayerName
	Deliver(event model.Event)
}

// Hub fans match events out to every player and spectator watching a
// single match. Each hub runs its own event loop goroutine.
type Hub struct {
	matchID     model.MatchID
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	logger      *slog.Logger

	register   chan Subscriber
	unregister chan Subscriber
	broadcast  chan model.Event
	done       chan struct{}
}

// NewHub creates a new Hub for a match
func NewHub(matchID model.MatchID, logger *slog.Logger) *Hub {
	return &Hub{
		matchID:     matchID,
		subscribers: make(map[Subscriber]bool),
		logger:      logger.With(slog.String("match_id", string(matchID))),
		register:    make(chan Subscriber),
		unregister:  make(chan Subscriber),
		broadcast:   make(chan model.Event, 256),
		done:        make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("match hub started")
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			h.subscribers[sub] = true
			count := len(h.subscribers)
			h.mu.Unlock()
			h.logger.Info("subscriber registered",
				slog.String("player", string(sub.Name())),
				slog.Int("total_subscribers", count))

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				count := len(h.subscribers)
				h.mu.Unlock()
				h.logger.Info("subscriber unregistered",
					slog.String("player", string(sub.Name())),
					slog.Int("total_subscribers", count))
			} else {
				h.mu.Unlock()
			}

		case event := <-h.broadcast:
			h.deliver(event)

		case <-h.done:
			h.drainAndStop()
			return
		}
	}
}

func (h *Hub) deliver(event model.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers {
		sub.Deliver(event)
	}
}

// drainAndStop delivers everything already queued before clearing the
// subscriber set. A closing match must get its final broadcast out;
// events published before Close are still owed to every observer.
func (h *Hub) drainAndStop() {
	for {
		select {
		case event := <-h.broadcast:
			h.deliver(event)
		default:
			h.mu.Lock()
			count := len(h.subscribers)
			h.subscribers = make(map[Subscriber]bool)
			h.mu.Unlock()
			h.logger.Info("match hub stopped", slog.Int("dropped_subscribers", count))
			return
		}
	}
}

// Register adds a subscriber to the hub
func (h *Hub) Register(sub Subscriber) {
	select {
	case h.register <- sub:
	case <-h.done:
	}
}

// Unregister removes a subscriber from the hub
func (h *Hub) Unregister(sub Subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Broadcast queues an event for delivery to all subscribers
func (h *Hub) Broadcast(event model.Event) {
	select {
	case h.broadcast <- event:
	case <-h.done:
	default:
		metrics.BroadcastDropsTotal.Inc()
		h.logger.Warn("broadcast dropped - hub buffer full",
			slog.String("event", string(event.Type)))
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	close(h.done)
}

// SubscriberCount returns the number of registered subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Manager manages hubs for all matches
type Manager struct {
	hubs   map[model.MatchID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewManager creates a new Manager
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		hubs:   make(map[model.MatchID]*Hub),
		logger: logger.With(slog.String("component", "hub")),
	}
}

// GetOrCreateHub returns the hub for a match, creating one if it doesn't exist
func (m *Manager) GetOrCreateHub(matchID model.MatchID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[matchID]; ok {
		return hub
	}

	hub := NewHub(matchID, m.logger)
	m.hubs[matchID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a match, or nil if it doesn't exist
func (m *Manager) GetHub(matchID model.MatchID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[matchID]
}

// RemoveHub removes and closes a hub
func (m *Manager) RemoveHub(matchID model.MatchID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[matchID]; ok {
		hub.Close()
		delete(m.hubs, matchID)
		m.logger.Info("match hub removed", slog.String("match_id", string(matchID)))
	}
}
