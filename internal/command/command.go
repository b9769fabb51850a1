// Package command assembles the bot's command tree: general commands, the
// interactive showcase commands, and the admin group, wired with the guild
// checks and the history observer.
package command

import (
	"fmt"
	"log"

	"github.com/keshon/interactkit/internal/discord"
	"github.com/keshon/interactkit/internal/storage"
	"github.com/keshon/interactkit/pkg/cmd"
	"github.com/keshon/interactkit/pkg/interact"
)

// Deps is everything the command tree needs from the host. Engine is a getter
// because the interactive engine only exists once the gateway session is open.
type Deps struct {
	Store  *storage.Storage
	Engine func() *interact.Engine
}

// Setup builds the dispatcher and attaches the full command tree.
func Setup(deps Deps) (*cmd.Dispatcher, error) {
	d := cmd.NewDispatcher(
		cmd.WithTypeOf(discord.EntityTypeOf),
		cmd.WithRootOptions(cmd.Options{
			CaseInsensitive: cmd.Bool(true),
			AutoAcknowledge: cmd.Bool(true),
			Level:           cmd.LevelOf(cmd.ResponsePublic),
		}),
	)

	d.Root().OnPostCall(historyObserver(deps.Store))

	if err := addGeneralCommands(d); err != nil {
		return nil, err
	}
	if err := addInteractiveCommands(d, deps); err != nil {
		return nil, err
	}
	if err := addAdminGroup(d, deps.Store); err != nil {
		return nil, err
	}
	return d, nil
}

// usernameOf extracts the invoker's username when the trigger carries one.
func usernameOf(inv *cmd.Invocation) string {
	if t, ok := inv.Trigger.(interface{ Username() string }); ok {
		return t.Username()
	}
	return ""
}

// historyObserver records every executed command in the guild's bounded
// history. Fires on the post-call signal, so faulted handlers are logged too.
func historyObserver(store *storage.Storage) cmd.Observer {
	return func(inv *cmd.Invocation) {
		if inv.Trigger.GuildID() == "" {
			return
		}
		err := store.LogCommand(
			inv.Trigger.GuildID(),
			inv.Trigger.ChannelID(),
			inv.Trigger.UserID(),
			usernameOf(inv),
			inv.Command.FullName(),
		)
		if err != nil {
			log.Printf("[WARN] Failed to log command %s: %v", inv.Command.FullName(), err)
		}
	}
}

// topGroupOf returns the name of the top-level group an invocation lives
// under, or the command's own name for top-level commands.
func topGroupOf(inv *cmd.Invocation) string {
	var top cmd.Node = inv.Command
	for top.Parent() != nil && top.Parent().Name() != "" {
		top = top.Parent()
	}
	return top.Name()
}

func reportf(inv *cmd.Invocation, format string, args ...any) error {
	return discord.Reply(inv, fmt.Sprintf(format, args...))
}
