package command

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/interactkit/internal/discord"
	"github.com/keshon/interactkit/internal/storage"
	"github.com/keshon/interactkit/pkg/cmd"
	"github.com/keshon/interactkit/pkg/typeset"
)

// addAdminGroup attaches the admin subtree. It is guild-only and deliberately
// not gated by GroupEnabled: disabling it would lock the admins out of the
// enable command.
func addAdminGroup(d *cmd.Dispatcher, store *storage.Storage) error {
	admin := cmd.NewGroup("admin", "Bot administration")
	admin.AddCheck(GuildOnly())

	groupParam := cmd.Parameter{
		Name:        "group",
		Type:        typeset.String,
		Description: "Command group name",
	}

	if err := admin.Add(cmd.New("disable", "Disable a command group in this guild", disableHandler(store),
		cmd.WithParams(groupParam),
	)); err != nil {
		return err
	}
	if err := admin.Add(cmd.New("enable", "Re-enable a command group in this guild", enableHandler(store),
		cmd.WithParams(groupParam),
	)); err != nil {
		return err
	}
	if err := admin.Add(cmd.New("history", "Show recent command usage", historyHandler(store),
		cmd.WithOptions(cmd.Options{Level: cmd.LevelOf(cmd.ResponseHidden)}),
	)); err != nil {
		return err
	}
	return d.Add(admin)
}

func disableHandler(store *storage.Storage) cmd.Handler {
	return func(inv *cmd.Invocation) error {
		group := strings.ToLower(inv.StringArg("group"))
		if group == "admin" {
			return discord.ReplyHidden(inv, "The admin group cannot be disabled.")
		}
		if err := store.DisableGroup(inv.Trigger.GuildID(), group); err != nil {
			return err
		}
		return reportf(inv, "Group `%s` disabled for this guild.", group)
	}
}

func enableHandler(store *storage.Storage) cmd.Handler {
	return func(inv *cmd.Invocation) error {
		group := strings.ToLower(inv.StringArg("group"))
		if err := store.EnableGroup(inv.Trigger.GuildID(), group); err != nil {
			return err
		}
		return reportf(inv, "Group `%s` enabled for this guild.", group)
	}
}

func historyHandler(store *storage.Storage) cmd.Handler {
	return func(inv *cmd.Invocation) error {
		records, err := store.CommandHistory(inv.Trigger.GuildID())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return discord.ReplyHidden(inv, "No commands logged yet.")
		}

		var lines []string
		for _, r := range records {
			lines = append(lines, fmt.Sprintf("`%s` by **%s** <t:%d:R>", r.Command, r.Username, r.Datetime.Unix()))
		}
		return discord.ReplyEmbed(inv, &discordgo.MessageEmbed{
			Title:       "Recent commands",
			Description: strings.Join(lines, "\n"),
		})
	}
}
