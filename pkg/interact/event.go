// Package interact lets a running command publish buttons, menus and modals
// and suspend until exactly one matching follow-up event arrives within a
// deadline. Awaiting produces a delegated context chained onto the current
// one; the transport feeds follow-up events into the listener table and
// implements the Publisher interface.
package interact

import "time"

// EventKind discriminates follow-up events.
type EventKind int

const (
	// EventButton is a button click.
	EventButton EventKind = iota
	// EventSelect is a select-menu submission.
	EventSelect
	// EventModal is a modal submission.
	EventModal
)

// Event is one follow-up event correlated to a published component.
type Event struct {
	Kind        EventKind
	ComponentID string
	// Values holds the selected menu values for EventSelect.
	Values []string
	// Fields holds the submitted inputs for EventModal, keyed by field id.
	Fields map[string]string

	GuildID   string
	ChannelID string
	UserID    string

	// Raw is the transport payload (e.g. *discordgo.InteractionCreate).
	Raw any
}

// ComponentID correlates a published component to exactly one pending
// listener. Ids are generated fresh per publication and never reused while a
// listener is live.
type ComponentID struct {
	ID string
	// ExpiresAt, when set, makes the listener reject events after the
	// instant and bounds the await deadline.
	ExpiresAt time.Time
	// UserID, when set, restricts matching to events from that user.
	UserID string
}
