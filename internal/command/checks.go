package command

import (
	"context"

	"github.com/keshon/interactkit/internal/storage"
	"github.com/keshon/interactkit/pkg/cmd"
)

// GuildOnly rejects invocations that do not originate in a guild.
func GuildOnly() cmd.Check {
	return cmd.Check{
		Name: "guild-only",
		Run: func(_ context.Context, inv *cmd.Invocation) (bool, error) {
			return inv.Trigger.GuildID() != "", nil
		},
	}
}

// GroupEnabled gates a subtree on the guild's disabled-groups list. Attached
// to a group, it is inherited by every descendant command.
func GroupEnabled(store *storage.Storage) cmd.Check {
	return cmd.Check{
		Name: "group-enabled",
		Run: func(_ context.Context, inv *cmd.Invocation) (bool, error) {
			guildID := inv.Trigger.GuildID()
			if guildID == "" {
				return true, nil
			}
			disabled, err := store.IsGroupDisabled(guildID, topGroupOf(inv))
			if err != nil {
				return false, err
			}
			return !disabled, nil
		},
	}
}
