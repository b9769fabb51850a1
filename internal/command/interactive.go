package command

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/keshon/interactkit/internal/discord"
	"github.com/keshon/interactkit/pkg/cmd"
	"github.com/keshon/interactkit/pkg/converter"
	"github.com/keshon/interactkit/pkg/interact"
	"github.com/keshon/interactkit/pkg/typeset"
)

// The interactive showcase commands. Each one drives a different follow-up
// primitive: buttons, paginated menu, multi-select, confirmation, modal.

var diceChoices = []converter.Choice{
	{Name: "d4", Value: 4},
	{Name: "d6", Value: 6},
	{Name: "d8", Value: 8},
	{Name: "d10", Value: 10},
	{Name: "d12", Value: 12},
	{Name: "d20", Value: 20},
	{Name: "d100", Value: 100},
}

var movieChoices = buildMovieChoices()

// Deliberately more than one menu page so the picker paginates.
func buildMovieChoices() []converter.Choice {
	titles := []string{
		"Alien", "Blade Runner", "Brazil", "Contact", "Dark City",
		"Dune", "Ex Machina", "Gattaca", "Her", "Inception",
		"Interstellar", "Looper", "Metropolis", "Moon", "Oblivion",
		"Primer", "Prospect", "Snowpiercer", "Solaris", "Stalker",
		"Sunshine", "The Fifth Element", "The Martian", "The Matrix", "The Thing",
		"THX 1138", "Total Recall", "Twelve Monkeys", "WALL-E", "World on a Wire",
	}
	out := make([]converter.Choice, len(titles))
	for i, t := range titles {
		out[i] = converter.Choice{Name: t, Value: t}
	}
	return out
}

var topicChoices = []converter.Choice{
	{Name: "Releases", Value: "releases"},
	{Name: "Events", Value: "events"},
	{Name: "Giveaways", Value: "giveaways"},
	{Name: "Patch notes", Value: "patch-notes"},
	{Name: "Off-topic", Value: "off-topic"},
}

func addInteractiveCommands(d *cmd.Dispatcher, deps Deps) error {
	play := cmd.NewGroup("play", "Interactive toys",
		cmd.WithGroupAliases("games"),
	)
	play.AddCheck(GroupEnabled(deps.Store))
	if err := play.Add(cmd.New("roll", "Roll a die of your choosing", rollHandler(deps))); err != nil {
		return err
	}
	if err := play.Add(cmd.New("movie", "Pick tonight's movie from the backlog", movieHandler(deps))); err != nil {
		return err
	}
	if err := play.Add(cmd.New("topics", "Subscribe to announcement topics", topicsHandler(deps))); err != nil {
		return err
	}
	if err := d.Add(play); err != nil {
		return err
	}

	mod := cmd.NewGroup("mod", "Moderation")
	mod.AddCheck(GuildOnly())
	mod.AddCheck(GroupEnabled(deps.Store))
	if err := mod.Add(cmd.New("purge", "Bulk-delete recent messages", purgeHandler(deps),
		cmd.WithParams(cmd.Parameter{
			Name:        "count",
			Type:        typeset.Int,
			Description: "How many messages to delete (max 100)",
		}),
	)); err != nil {
		return err
	}
	if err := d.Add(mod); err != nil {
		return err
	}

	// Modals ride the initial interaction response, so the command must not
	// auto-acknowledge and cannot be invoked as text.
	return d.Add(cmd.New("feedback", "Send feedback to the bot owners", feedbackHandler(deps),
		cmd.WithKind(cmd.KindSlashOnly),
		cmd.WithOptions(cmd.Options{AutoAcknowledge: cmd.Bool(false)}),
	))
}

// replyInteractErr turns engine failures the user caused (walked away, let the
// prompt expire) into a quiet notice and reports everything else.
func replyInteractErr(inv *cmd.Invocation, err error) error {
	if errors.Is(err, interact.ErrTimeout) {
		return discord.ReplyHidden(inv, "No response in time, cancelled.")
	}
	return err
}

func rollHandler(deps Deps) cmd.Handler {
	return func(inv *cmd.Invocation) error {
		ic := deps.Engine().NewContext(inv)
		choice, delegate, err := ic.SelectButton(inv.Ctx, "Pick a die:", diceChoices,
			interact.OnlyUser(inv.Trigger.UserID()),
		)
		if err != nil {
			return replyInteractErr(inv, err)
		}
		sides := choice.Value.(int)
		return discord.ReplyTo(delegate, fmt.Sprintf("🎲 %s: **%d**", choice.Name, rand.Intn(sides)+1), false)
	}
}

func movieHandler(deps Deps) cmd.Handler {
	return func(inv *cmd.Invocation) error {
		ic := deps.Engine().NewContext(inv)
		choice, delegate, err := ic.SelectMenu(inv.Ctx, "Pick a movie", movieChoices)
		if err != nil {
			return replyInteractErr(inv, err)
		}
		return discord.ReplyTo(delegate, fmt.Sprintf("Tonight we watch **%s**.", choice.Name), false)
	}
}

func topicsHandler(deps Deps) cmd.Handler {
	return func(inv *cmd.Invocation) error {
		ic := deps.Engine().NewContext(inv)
		picked, delegate, err := ic.SelectMenuMulti(inv.Ctx, "Pick your topics", topicChoices,
			interact.OnlyUser(inv.Trigger.UserID()),
		)
		if err != nil {
			return replyInteractErr(inv, err)
		}
		names := make([]string, len(picked))
		for i, c := range picked {
			names[i] = c.Name
		}
		return discord.ReplyTo(delegate, "Subscribed to: "+strings.Join(names, ", "), true)
	}
}

func purgeHandler(deps Deps) cmd.Handler {
	return func(inv *cmd.Invocation) error {
		count := int(inv.IntArg("count"))
		if count < 1 || count > 100 {
			return discord.ReplyHidden(inv, "Count must be between 1 and 100.")
		}

		ic := deps.Engine().NewContext(inv)
		ok, delegate, err := ic.Confirm(inv.Ctx,
			fmt.Sprintf("Delete the last %d messages in this channel?", count),
			interact.OnlyUser(inv.Trigger.UserID()),
		)
		if err != nil {
			return replyInteractErr(inv, err)
		}
		if !ok {
			return discord.ReplyTo(delegate, "Cancelled.", true)
		}

		session := sessionOf(inv)
		channelID := inv.Trigger.ChannelID()
		messages, err := session.ChannelMessages(channelID, count, "", "", "")
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		ids := make([]string, len(messages))
		for i, m := range messages {
			ids[i] = m.ID
		}
		if err := session.ChannelMessagesBulkDelete(channelID, ids); err != nil {
			return fmt.Errorf("bulk delete: %w", err)
		}
		return discord.ReplyTo(delegate, fmt.Sprintf("Deleted %d messages.", len(ids)), true)
	}
}

func feedbackHandler(deps Deps) cmd.Handler {
	return func(inv *cmd.Invocation) error {
		ic := deps.Engine().NewContext(inv)
		fields, delegate, err := ic.GetModal(inv.Ctx, "Send feedback", []interact.ModalField{
			{ID: "subject", Label: "Subject", Required: true},
			{ID: "details", Label: "Details", Required: true, Paragraph: true},
		}, interact.ModalOnlyUser(inv.Trigger.UserID()))
		if err != nil {
			return replyInteractErr(inv, err)
		}
		log.Printf("[INFO] Feedback from %s: %s", usernameOf(inv), fields["subject"])
		return discord.ReplyTo(delegate, "Thanks, your feedback was recorded.", true)
	}
}
