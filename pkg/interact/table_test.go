package interact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchResolvesAndRemoves(t *testing.T) {
	table := NewListenerTable()
	id := FreshID()
	ch := table.Register(ComponentID{ID: id})
	require.True(t, table.Live(id))

	ev := Event{Kind: EventButton, ComponentID: id, UserID: "u1"}
	require.True(t, table.Dispatch(ev))

	got := <-ch
	assert.Equal(t, id, got.ComponentID)

	// Exactly once: the listener is gone.
	assert.False(t, table.Live(id))
	assert.False(t, table.Dispatch(ev))
	assert.Equal(t, 0, table.Pending())
}

func TestDispatchUnknownID(t *testing.T) {
	table := NewListenerTable()
	assert.False(t, table.Dispatch(Event{ComponentID: "nope"}))
}

func TestDispatchUserRestrictedKeepsListenerAlive(t *testing.T) {
	table := NewListenerTable()
	id := FreshID()
	ch := table.Register(ComponentID{ID: id, UserID: "owner"})

	// Somebody else's click is ignored and the listener stays live.
	assert.False(t, table.Dispatch(Event{ComponentID: id, UserID: "intruder"}))
	assert.True(t, table.Live(id))

	require.True(t, table.Dispatch(Event{ComponentID: id, UserID: "owner"}))
	got := <-ch
	assert.Equal(t, "owner", got.UserID)
}

func TestDispatchExpiredListenerIsRemoved(t *testing.T) {
	table := NewListenerTable()
	id := FreshID()
	table.Register(ComponentID{ID: id, ExpiresAt: time.Now().Add(-time.Minute)})

	assert.False(t, table.Dispatch(Event{ComponentID: id}))
	assert.False(t, table.Live(id), "expired listener is dropped on contact")
}

func TestUnregisterIsIdempotent(t *testing.T) {
	table := NewListenerTable()
	id := FreshID()
	table.Register(ComponentID{ID: id})

	table.Unregister(id)
	table.Unregister(id)
	assert.Equal(t, 0, table.Pending())
}

func TestRegisterReplacesReusedID(t *testing.T) {
	table := NewListenerTable()
	id := "fixed-id"
	table.Register(ComponentID{ID: id, UserID: "first"})
	ch := table.Register(ComponentID{ID: id, UserID: "second"})

	require.True(t, table.Dispatch(Event{ComponentID: id, UserID: "second"}))
	got := <-ch
	assert.Equal(t, "second", got.UserID)
	assert.Equal(t, 0, table.Pending())
}
