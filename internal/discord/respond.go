package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/interactkit/pkg/cmd"
	"github.com/keshon/interactkit/pkg/interact"
)

const EmbedColor = 0x4a7abf

// Reply answers an invocation with its command's effective response level:
// the initial interaction response when still available, a followup after,
// or a plain channel message for text invocations.
func Reply(inv *cmd.Invocation, content string) error {
	level := cmd.ResponsePublic
	if inv.Command != nil {
		level = inv.Command.Options().Level
	}
	return ReplyLevel(inv, level, content)
}

// ReplyHidden answers ephemerally regardless of the command's level.
func ReplyHidden(inv *cmd.Invocation, content string) error {
	return ReplyLevel(inv, cmd.ResponseHidden, content)
}

// ReplyLevel answers an invocation with an explicit response level.
func ReplyLevel(inv *cmd.Invocation, level cmd.ResponseLevel, content string) error {
	switch t := inv.Trigger.(type) {
	case *InteractionTrigger:
		if level.MentionInvoker {
			content = fmt.Sprintf("<@%s> %s", t.UserID(), content)
		}
		if t.claimAck() {
			return respond(t.Session, t.Event, content, level.Hidden)
		}
		return followup(t.Session, t.Event, content, level.Hidden)
	case *MessageTrigger:
		if level.MentionInvoker {
			content = fmt.Sprintf("<@%s> %s", t.UserID(), content)
		}
		_, err := t.Session.ChannelMessageSend(t.Event.ChannelID, content)
		return err
	}
	return fmt.Errorf("reply: unsupported trigger %T", inv.Trigger)
}

// ReplyTo answers on an interactive context chain: the reply goes out as a
// followup of the chain's originating interaction (the component interaction
// itself was already acknowledged by the event router).
func ReplyTo(c *interact.Context, content string, hidden bool) error {
	inv := c.Invocation()
	if inv == nil {
		return &cmd.ConfigurationError{Msg: "reply on a context with no originating invocation"}
	}
	if t, ok := inv.Trigger.(*InteractionTrigger); ok {
		if t.claimAck() {
			return respond(t.Session, t.Event, content, hidden)
		}
		return followup(t.Session, t.Event, content, hidden)
	}
	level := cmd.ResponseLevel{Hidden: hidden}
	return ReplyLevel(inv, level, content)
}

// Defer acknowledges an interaction without visible output so the handler
// can take its time. No-op for text triggers and already-answered
// interactions.
func Defer(trig cmd.Trigger, hidden bool) error {
	t, ok := trig.(*InteractionTrigger)
	if !ok || !t.claimAck() {
		return nil
	}
	data := &discordgo.InteractionResponseData{}
	if hidden {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return t.Session.InteractionRespond(t.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, hidden bool) error {
	data := &discordgo.InteractionResponseData{Content: content}
	if hidden {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func followup(s *discordgo.Session, i *discordgo.InteractionCreate, content string, hidden bool) error {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   ephemeralFlag(hidden),
	})
	return err
}

func ephemeralFlag(hidden bool) discordgo.MessageFlags {
	if hidden {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

// MessageEmbed sends an embed to a channel outside any interaction.
func MessageEmbed(s *discordgo.Session, channelID string, embed *discordgo.MessageEmbed) error {
	if embed.Color == 0 {
		embed.Color = EmbedColor
	}
	_, err := s.ChannelMessageSendEmbed(channelID, embed)
	return err
}

// ReplyEmbed answers an invocation with an embed.
func ReplyEmbed(inv *cmd.Invocation, embed *discordgo.MessageEmbed) error {
	if embed.Color == 0 {
		embed.Color = EmbedColor
	}
	switch t := inv.Trigger.(type) {
	case *InteractionTrigger:
		hidden := inv.Command != nil && inv.Command.Options().Level.Hidden
		if t.claimAck() {
			data := &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{embed},
				Flags:  ephemeralFlag(hidden),
			}
			return t.Session.InteractionRespond(t.Event.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: data,
			})
		}
		_, err := t.Session.FollowupMessageCreate(t.Event.Interaction, true, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  ephemeralFlag(hidden),
		})
		return err
	case *MessageTrigger:
		_, err := t.Session.ChannelMessageSendEmbed(t.Event.ChannelID, embed)
		return err
	}
	return fmt.Errorf("reply embed: unsupported trigger %T", inv.Trigger)
}
