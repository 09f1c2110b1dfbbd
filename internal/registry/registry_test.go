package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/battleship-go/internal/model"
	"github.com/fleetgrid/battleship-go/internal/testutil"
)

type fakeConn struct {
	events []model.Event
	closed bool
}

func (c *fakeConn) Send(event model.Event) error {
	c.events = append(c.events, event)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		input model.PlayerName
		valid bool
	}{
		{"simple", "alice", true},
		{"with digits", "player42", true},
		{"with underscore and dash", "big_bad-wolf", true},
		{"empty", "", false},
		{"spaces", "two words", false},
		{"too long", "abcdefghijklmnopqrstuvwxy", false},
		{"punctuation", "alice!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidName(tt.input))
		})
	}
}

func TestResolveCreatesOnce(t *testing.T) {
	r := New(testutil.NopLogger())

	first, err := r.Resolve("alice")
	require.NoError(t, err)

	second, err := r.Resolve("alice")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestResolveRejectsInvalidName(t *testing.T) {
	r := New(testutil.NopLogger())

	_, err := r.Resolve("not a name")
	assert.ErrorIs(t, err, model.ErrInvalidName)
}

func TestGetUnknownName(t *testing.T) {
	r := New(testutil.NopLogger())

	_, err := r.Get("nobody")
	assert.ErrorIs(t, err, model.ErrIdentityNotFound)
}

func TestBindRejectsLiveName(t *testing.T) {
	r := New(testutil.NopLogger())
	identity, err := r.Resolve("alice")
	require.NoError(t, err)

	require.NoError(t, r.Bind(identity, &fakeConn{}))

	err = r.Bind(identity, &fakeConn{})
	assert.ErrorIs(t, err, model.ErrNameInUse)
}

func TestUnbindThenRebind(t *testing.T) {
	r := New(testutil.NopLogger())
	identity, err := r.Resolve("alice")
	require.NoError(t, err)

	first := &fakeConn{}
	require.NoError(t, r.Bind(identity, first))
	assert.True(t, r.Unbind(identity, first))
	assert.False(t, identity.Connected())

	second := &fakeConn{}
	require.NoError(t, r.Bind(identity, second))
	assert.True(t, identity.Connected())
}

func TestUnbindStaleConnIsNoOp(t *testing.T) {
	r := New(testutil.NopLogger())
	identity, err := r.Resolve("alice")
	require.NoError(t, err)

	current := &fakeConn{}
	require.NoError(t, r.Bind(identity, current))

	// A disconnect from an earlier connection must not evict the live one
	stale := &fakeConn{}
	assert.False(t, r.Unbind(identity, stale))
	assert.True(t, identity.Connected())
}

func TestSendToDisconnectedIdentityDrops(t *testing.T) {
	r := New(testutil.NopLogger())
	identity, err := r.Resolve("alice")
	require.NoError(t, err)

	// Must not panic or block
	identity.Send(model.Event{Type: model.EventWelcome})

	conn := &fakeConn{}
	require.NoError(t, r.Bind(identity, conn))
	identity.Send(model.Event{Type: model.EventWelcome})

	assert.Len(t, conn.events, 1)
}

func TestMatchBinding(t *testing.T) {
	r := New(testutil.NopLogger())
	identity, err := r.Resolve("alice")
	require.NoError(t, err)

	_, ok := identity.CurrentMatch()
	assert.False(t, ok)

	r.SetMatch(identity, "match-1")
	matchID, ok := identity.CurrentMatch()
	require.True(t, ok)
	assert.Equal(t, model.MatchID("match-1"), matchID)

	r.ClearMatch(identity)
	_, ok = identity.CurrentMatch()
	assert.False(t, ok)
}

func TestConnectedCount(t *testing.T) {
	r := New(testutil.NopLogger())

	alice, _ := r.Resolve("alice")
	bob, _ := r.Resolve("bob")
	_, _ = r.Resolve("carol")

	require.NoError(t, r.Bind(alice, &fakeConn{}))
	require.NoError(t, r.Bind(bob, &fakeConn{}))

	assert.Equal(t, 2, r.ConnectedCount())
}
