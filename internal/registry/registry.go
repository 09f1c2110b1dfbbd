package registry

import (
	"log/slog"
	"regexp"
	"sync"

	"github.com/fleetgrid/battleship-go/internal/model"
)

// Conn is a live connection capable of delivering events to a player.
// Transport implementations must not block in Send; slow consumers
// drop events rather than stall the caller.
type Conn interface {
	Send(event model.Event) error
	Close() error
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,24}$`)

// ValidName reports whether a player name is acceptable on the wire.
func ValidName(name model.PlayerName) bool {
	return namePattern.MatchString(string(name))
}

// Identity is the live state for a known player name. The connection
// handle and current match binding change as the player connects,
// drops, and reconnects; the name is permanent.
type Identity struct {
	Name model.PlayerName

	mu           sync.Mutex
	conn         Conn
	currentMatch model.MatchID
}

// Connected reports whether the identity has a live connection.
func (i *Identity) Connected() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.conn != nil
}

// CurrentMatch returns the match the identity is bound to, if any.
func (i *Identity) CurrentMatch() (model.MatchID, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.currentMatch, i.currentMatch != ""
}

// Send delivers an event over the identity's live connection. Events
// for disconnected identities are dropped silently; the player will
// receive a state replay on reconnect instead.
func (i *Identity) Send(event model.Event) {
	i.mu.Lock()
	conn := i.conn
	i.mu.Unlock()

	if conn == nil {
		return
	}
	_ = conn.Send(event)
}

// Registry maps player names to live identities. Identities are
// created on first sight of a name and persist for the life of the
// process so that reconnecting players keep their match binding.
type Registry struct {
	logger *slog.Logger

	mu         sync.RWMutex
	identities map[model.PlayerName]*Identity
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		logger:     logger.With("component", "registry"),
		identities: make(map[model.PlayerName]*Identity),
	}
}

// Resolve returns the identity for a name, creating it if this is the
// first time the name has been seen.
func (r *Registry) Resolve(name model.PlayerName) (*Identity, error) {
	if !ValidName(name) {
		return nil, model.ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.identities[name]
	if !ok {
		identity = &Identity{Name: name}
		r.identities[name] = identity
		r.logger.Debug("created identity", "player", name)
	}
	return identity, nil
}

// Get returns the identity for a name without creating one.
func (r *Registry) Get(name model.PlayerName) (*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.identities[name]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	return identity, nil
}

// Bind attaches a connection to an identity. A name already claimed by
// a live connection cannot be bound again; the caller must reject the
// new connection.
func (r *Registry) Bind(identity *Identity, conn Conn) error {
	identity.mu.Lock()
	defer identity.mu.Unlock()

	if identity.conn != nil {
		return model.ErrNameInUse
	}
	identity.conn = conn
	r.logger.Info("bound connection", "player", identity.Name)
	return nil
}

// Unbind detaches a connection from an identity. Only the connection
// that is currently bound is removed; a stale disconnect arriving
// after a rebind is a no-op.
func (r *Registry) Unbind(identity *Identity, conn Conn) bool {
	identity.mu.Lock()
	defer identity.mu.Unlock()

	if identity.conn != conn {
		return false
	}
	identity.conn = nil
	r.logger.Info("unbound connection", "player", identity.Name)
	return true
}

// SetMatch binds an identity to a match.
func (r *Registry) SetMatch(identity *Identity, matchID model.MatchID) {
	identity.mu.Lock()
	defer identity.mu.Unlock()
	identity.currentMatch = matchID
}

// ClearMatch releases an identity from its match binding.
func (r *Registry) ClearMatch(identity *Identity) {
	identity.mu.Lock()
	defer identity.mu.Unlock()
	identity.currentMatch = ""
}

// ConnectedCount returns the number of identities with live connections.
func (r *Registry) ConnectedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, identity := range r.identities {
		if identity.Connected() {
			count++
		}
	}
	return count
}
