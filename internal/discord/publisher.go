package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/interactkit/pkg/cmd"
	"github.com/keshon/interactkit/pkg/interact"
)

// publisher implements interact.Publisher against a live session. Component
// messages ride the originating interaction when it is still unanswered and
// fall back to plain channel messages after.
type publisher struct {
	session *discordgo.Session
}

func (p *publisher) SendComponents(ctx context.Context, origin *interact.Context, content string, rows []interact.Row) (interact.MessageRef, error) {
	inv := origin.Invocation()
	if inv == nil {
		return interact.MessageRef{}, &cmd.ConfigurationError{Msg: "publish on a context with no originating invocation"}
	}
	components := toComponents(rows, false)

	if t, ok := inv.Trigger.(*InteractionTrigger); ok && t.claimAck() {
		err := p.session.InteractionRespond(t.Event.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    content,
				Components: components,
			},
		})
		if err != nil {
			return interact.MessageRef{}, err
		}
		msg, err := p.session.InteractionResponse(t.Event.Interaction)
		if err != nil {
			return interact.MessageRef{}, fmt.Errorf("fetch interaction response: %w", err)
		}
		return interact.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID, Raw: msg}, nil
	}

	msg, err := p.session.ChannelMessageSendComplex(inv.ChannelID(), &discordgo.MessageSend{
		Content:    content,
		Components: components,
	})
	if err != nil {
		return interact.MessageRef{}, err
	}
	return interact.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID, Raw: msg}, nil
}

func (p *publisher) EditComponents(ctx context.Context, ref interact.MessageRef, content string, rows []interact.Row) error {
	components := toComponents(rows, false)
	_, err := p.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    ref.ChannelID,
		ID:         ref.MessageID,
		Content:    &content,
		Components: &components,
	})
	return err
}

func (p *publisher) DisableComponents(ctx context.Context, ref interact.MessageRef, rows []interact.Row) error {
	components := toComponents(rows, true)
	_, err := p.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    ref.ChannelID,
		ID:         ref.MessageID,
		Components: &components,
	})
	return err
}

func (p *publisher) OpenModal(ctx context.Context, origin *interact.Context, m interact.Modal) error {
	inv := origin.Invocation()
	if inv == nil {
		return &cmd.ConfigurationError{Msg: "modal on a context with no originating invocation"}
	}
	t, ok := inv.Trigger.(*InteractionTrigger)
	if !ok {
		return fmt.Errorf("modal requires an interaction trigger, got %T", inv.Trigger)
	}
	if !t.claimAck() {
		return fmt.Errorf("modal requires an unanswered interaction; disable auto-acknowledge for this command")
	}

	var rows []discordgo.MessageComponent
	for _, f := range m.Fields {
		style := discordgo.TextInputShort
		if f.Paragraph {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    f.ID,
				Label:       f.Label,
				Placeholder: f.Placeholder,
				Required:    f.Required,
				Style:       style,
			},
		}})
	}

	return p.session.InteractionRespond(t.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   m.ID,
			Title:      m.Title,
			Components: rows,
		},
	})
}

// toComponents renders engine rows as discordgo components, optionally in a
// disabled state.
func toComponents(rows []interact.Row, disabled bool) []discordgo.MessageComponent {
	var out []discordgo.MessageComponent
	for _, row := range rows {
		var items []discordgo.MessageComponent
		for _, b := range row.Buttons {
			items = append(items, discordgo.Button{
				CustomID: b.ID,
				Label:    b.Label,
				Style:    buttonStyle(b.Style),
				Disabled: disabled,
			})
		}
		if row.Menu != nil {
			m := row.Menu
			minValues := m.MinValues
			menu := discordgo.SelectMenu{
				CustomID:    m.ID,
				Placeholder: m.Placeholder,
				MinValues:   &minValues,
				MaxValues:   m.MaxValues,
				Disabled:    disabled,
			}
			for _, o := range m.Options {
				menu.Options = append(menu.Options, discordgo.SelectMenuOption{
					Label:       o.Label,
					Value:       o.Value,
					Description: o.Description,
				})
			}
			items = append(items, menu)
		}
		out = append(out, discordgo.ActionsRow{Components: items})
	}
	return out
}

func buttonStyle(s interact.ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case interact.StylePrimary:
		return discordgo.PrimaryButton
	case interact.StyleSuccess:
		return discordgo.SuccessButton
	case interact.StyleDanger:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}
