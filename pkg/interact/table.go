package interact

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// FreshID returns a new correlation id.
func FreshID() string { return uuid.NewString() }

type listener struct {
	ch        chan Event
	userID    string
	expiresAt time.Time
}

// ListenerTable is the process-wide correlation table: id to waiting
// listener. Insertion on publish, exactly-once removal on resolution or
// explicit unregister. Safe for concurrent use; discordgo delivers events
// from multiple goroutines.
type ListenerTable struct {
	mu        sync.Mutex
	listeners map[string]*listener
}

// NewListenerTable returns an empty table.
func NewListenerTable() *ListenerTable {
	return &ListenerTable{listeners: make(map[string]*listener)}
}

// Register inserts a listener for the id and returns the channel its single
// matching event is delivered on. Registering an id that is already live
// replaces the stale entry; ids are uuids, so this only happens when a caller
// reuses one deliberately.
func (t *ListenerTable) Register(id ComponentID) <-chan Event {
	l := &listener{
		ch:        make(chan Event, 1),
		userID:    id.UserID,
		expiresAt: id.ExpiresAt,
	}
	t.mu.Lock()
	t.listeners[id.ID] = l
	t.mu.Unlock()
	return l.ch
}

// Unregister removes a listener. Removing an id that already resolved is a
// no-op, so cleanup paths can run unconditionally.
func (t *ListenerTable) Unregister(id string) {
	t.mu.Lock()
	delete(t.listeners, id)
	t.mu.Unlock()
}

// Dispatch routes a follow-up event to the listener registered for its
// component id and removes the listener. Returns false when no live listener
// matched: unknown id, expired listener, or a user-restricted listener hit by
// somebody else (the listener stays alive in that last case).
func (t *ListenerTable) Dispatch(ev Event) bool {
	t.mu.Lock()
	l, ok := t.listeners[ev.ComponentID]
	if !ok {
		t.mu.Unlock()
		return false
	}
	if !l.expiresAt.IsZero() && time.Now().After(l.expiresAt) {
		delete(t.listeners, ev.ComponentID)
		t.mu.Unlock()
		return false
	}
	if l.userID != "" && l.userID != ev.UserID {
		t.mu.Unlock()
		return false
	}
	delete(t.listeners, ev.ComponentID)
	t.mu.Unlock()

	l.ch <- ev
	return true
}

// Live reports whether a listener is registered for the id.
func (t *ListenerTable) Live(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.listeners[id]
	return ok
}

// Pending returns the number of live listeners.
func (t *ListenerTable) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners)
}
