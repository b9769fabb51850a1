package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Triggers adapt Discord events to the dispatcher's cmd.Trigger. The
// interaction trigger additionally tracks whether its interaction has been
// responded to, because Discord allows exactly one initial response: the
// first publisher or responder that needs it takes it, everything after goes
// through followups or edits.

// InteractionTrigger wraps a slash-command interaction.
type InteractionTrigger struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate

	mu    sync.Mutex
	acked bool
}

// NewInteractionTrigger wraps an interaction event.
func NewInteractionTrigger(s *discordgo.Session, i *discordgo.InteractionCreate) *InteractionTrigger {
	return &InteractionTrigger{Session: s, Event: i}
}

func (t *InteractionTrigger) GuildID() string   { return t.Event.GuildID }
func (t *InteractionTrigger) ChannelID() string { return t.Event.ChannelID }

func (t *InteractionTrigger) UserID() string {
	if t.Event.Member != nil && t.Event.Member.User != nil {
		return t.Event.Member.User.ID
	}
	if t.Event.User != nil {
		return t.Event.User.ID
	}
	return ""
}

func (t *InteractionTrigger) Raw() any { return t.Event }

// Username returns the invoker's username for logging.
func (t *InteractionTrigger) Username() string {
	if t.Event.Member != nil && t.Event.Member.User != nil {
		return t.Event.Member.User.Username
	}
	if t.Event.User != nil {
		return t.Event.User.Username
	}
	return ""
}

// claimAck marks the interaction as responded and reports whether the caller
// won the claim (and must therefore send the initial response).
func (t *InteractionTrigger) claimAck() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.acked {
		return false
	}
	t.acked = true
	return true
}

// Acked reports whether the interaction already has its initial response.
func (t *InteractionTrigger) Acked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.acked
}

// MessageTrigger wraps a prefixed text message.
type MessageTrigger struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
}

// NewMessageTrigger wraps a message event.
func NewMessageTrigger(s *discordgo.Session, m *discordgo.MessageCreate) *MessageTrigger {
	return &MessageTrigger{Session: s, Event: m}
}

func (t *MessageTrigger) GuildID() string   { return t.Event.GuildID }
func (t *MessageTrigger) ChannelID() string { return t.Event.ChannelID }
func (t *MessageTrigger) UserID() string    { return t.Event.Author.ID }
func (t *MessageTrigger) Raw() any          { return t.Event }

// Username returns the author's username for logging.
func (t *MessageTrigger) Username() string { return t.Event.Author.Username }
