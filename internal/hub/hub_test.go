package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/battleship-go/internal/model"
	"github.com/fleetgrid/battleship-go/internal/testutil"
)

type fakeSubscriber struct {
	name model.PlayerName

	mu     sync.Mutex
	events []model.Event
}

func (s *fakeSubscriber) Name() model.PlayerName {
	return s.name
}

func (s *fakeSubscriber) Deliver(event model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *fakeSubscriber) received() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	h := NewHub("match-1", testutil.NopLogger())
	go h.Run()
	defer h.Close()

	alice := &fakeSubscriber{name: "alice"}
	bob := &fakeSubscriber{name: "bob"}
	h.Register(alice)
	h.Register(bob)
	waitFor(t, func() bool { return h.SubscriberCount() == 2 })

	h.Broadcast(model.Event{Type: model.EventChat, MatchID: "match-1"})

	waitFor(t, func() bool { return len(alice.received()) == 1 })
	waitFor(t, func() bool { return len(bob.received()) == 1 })
	assert.Equal(t, model.EventChat, alice.received()[0].Type)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	h := NewHub("match-1", testutil.NopLogger())
	go h.Run()
	defer h.Close()

	alice := &fakeSubscriber{name: "alice"}
	h.Register(alice)
	waitFor(t, func() bool { return h.SubscriberCount() == 1 })

	h.Unregister(alice)
	waitFor(t, func() bool { return h.SubscriberCount() == 0 })

	h.Broadcast(model.Event{Type: model.EventChat})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, alice.received())
}

func TestCloseDropsSubscribers(t *testing.T) {
	h := NewHub("match-1", testutil.NopLogger())
	go h.Run()

	alice := &fakeSubscriber{name: "alice"}
	h.Register(alice)
	waitFor(t, func() bool { return h.SubscriberCount() == 1 })

	h.Close()
	waitFor(t, func() bool { return h.SubscriberCount() == 0 })

	// Must not block after shutdown
	h.Broadcast(model.Event{Type: model.EventChat})
	h.Register(&fakeSubscriber{name: "bob"})
}

func TestCloseDeliversPendingBroadcasts(t *testing.T) {
	// A broadcast enqueued before Close must still reach subscribers,
	// even when Close wins the race with the run loop. The final
	// MatchEnded event goes out exactly this way.
	for round := 0; round < 50; round++ {
		h := NewHub("match-1", testutil.NopLogger())
		go h.Run()

		alice := &fakeSubscriber{name: "alice"}
		h.Register(alice)
		waitFor(t, func() bool { return h.SubscriberCount() == 1 })

		h.Broadcast(model.Event{Type: model.EventMatchEnded, MatchID: "match-1"})
		h.Close()

		waitFor(t, func() bool { return len(alice.received()) == 1 })
		require.Equal(t, model.EventMatchEnded, alice.received()[0].Type)
	}
}

func TestManagerGetOrCreate(t *testing.T) {
	m := NewManager(testutil.NopLogger())

	first := m.GetOrCreateHub("match-1")
	second := m.GetOrCreateHub("match-1")
	assert.Same(t, first, second)

	other := m.GetOrCreateHub("match-2")
	assert.NotSame(t, first, other)

	m.RemoveHub("match-1")
	m.RemoveHub("match-2")
}

func TestManagerGetMissing(t *testing.T) {
	m := NewManager(testutil.NopLogger())
	assert.Nil(t, m.GetHub("nope"))
}

func TestManagerRemoveHub(t *testing.T) {
	m := NewManager(testutil.NopLogger())

	m.GetOrCreateHub("match-1")
	m.RemoveHub("match-1")

	assert.Nil(t, m.GetHub("match-1"))
}
