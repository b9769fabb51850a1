package command

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/interactkit/internal/discord"
	"github.com/keshon/interactkit/internal/version"
	"github.com/keshon/interactkit/pkg/cmd"
	"github.com/keshon/interactkit/pkg/metadata"
)

// generalMeta is the descriptor table for the parameterized general commands.
// It mirrors what the annotation extractor would emit for their handlers.
const generalMeta = `
- name: echo
  description: Repeat your text
  parameters:
    - name: text
      type: string
      description: Text to repeat
    - name: times
      type: int
      optional: true
      default: 1
      description: How many times to repeat it
- name: remind
  description: Ping you after a delay
  parameters:
    - name: delay
      type: duration
      description: How long to wait, e.g. 10m or 1h30m
    - name: note
      type: string
      optional: true
      default: Time is up
      description: Reminder text
`

func addGeneralCommands(d *cmd.Dispatcher) error {
	metas, err := metadata.Parse([]byte(generalMeta))
	if err != nil {
		return err
	}
	byName := map[string]metadata.CommandMeta{}
	for _, m := range metas {
		byName[m.Name] = m
	}

	echoParams, err := byName["echo"].Resolve(metadata.Resolver{})
	if err != nil {
		return err
	}
	remindParams, err := byName["remind"].Resolve(metadata.Resolver{})
	if err != nil {
		return err
	}

	if err := d.Add(cmd.New("ping", "Check that the bot is alive", pingHandler)); err != nil {
		return err
	}
	if err := d.Add(cmd.New("about", "Show bot version", aboutHandler, cmd.WithAliases("version"))); err != nil {
		return err
	}
	if err := d.Add(cmd.New("echo", byName["echo"].Description, echoHandler,
		cmd.WithAliases("say"),
		cmd.WithParams(echoParams...),
	)); err != nil {
		return err
	}
	if err := d.Add(cmd.New("remind", byName["remind"].Description, remindHandler,
		cmd.WithParams(remindParams...),
	)); err != nil {
		return err
	}
	return d.Add(cmd.New("help", "List available commands", helpHandler(d)))
}

func pingHandler(inv *cmd.Invocation) error {
	return discord.Reply(inv, "Pong!")
}

func aboutHandler(inv *cmd.Invocation) error {
	return reportf(inv, "%s %s", version.AppFullName, version.Version)
}

func echoHandler(inv *cmd.Invocation) error {
	text := inv.StringArg("text")
	times := inv.IntArg("times")
	if times < 1 || times > 10 {
		return discord.ReplyHidden(inv, "Repetition count must be between 1 and 10.")
	}
	lines := make([]string, times)
	for i := range lines {
		lines[i] = text
	}
	return discord.Reply(inv, strings.Join(lines, "\n"))
}

func remindHandler(inv *cmd.Invocation) error {
	delay, ok := inv.Arg("delay").(time.Duration)
	if !ok {
		return fmt.Errorf("remind: delay bound as %T", inv.Arg("delay"))
	}
	if delay < time.Second || delay > 24*time.Hour {
		return discord.ReplyHidden(inv, "Delay must be between 1s and 24h.")
	}
	note := inv.StringArg("note")

	session := sessionOf(inv)
	channelID := inv.Trigger.ChannelID()
	userID := inv.Trigger.UserID()
	time.AfterFunc(delay, func() {
		if _, err := session.ChannelMessageSend(channelID, fmt.Sprintf("<@%s> ⏰ %s", userID, note)); err != nil {
			log.Println("[WARN] Failed to deliver reminder:", err)
		}
	})
	return reportf(inv, "Will remind you in %s.", delay)
}

// helpHandler renders the command tree as one embed, a field per top-level
// entry.
func helpHandler(d *cmd.Dispatcher) cmd.Handler {
	return func(inv *cmd.Invocation) error {
		embed := &discordgo.MessageEmbed{
			Title: version.AppFullName,
		}
		for _, n := range d.Root().Children() {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  describeNode(n),
				Value: nodeSummary(n),
			})
		}
		return discord.ReplyEmbed(inv, embed)
	}
}

func describeNode(n cmd.Node) string {
	name := n.Name()
	if aliases := n.Aliases(); len(aliases) > 0 {
		name += " (" + strings.Join(aliases, ", ") + ")"
	}
	return name
}

func nodeSummary(n cmd.Node) string {
	desc := n.Description()
	children := childrenOf(n)
	if len(children) == 0 {
		return desc
	}
	var subs []string
	for _, child := range children {
		subs = append(subs, fmt.Sprintf("`%s` %s", child.Name(), child.Description()))
	}
	return desc + "\n" + strings.Join(subs, "\n")
}

func childrenOf(n cmd.Node) []cmd.Node {
	switch v := n.(type) {
	case *cmd.Group:
		return v.Children()
	case *cmd.Command:
		return v.Children()
	}
	return nil
}

func sessionOf(inv *cmd.Invocation) *discordgo.Session {
	switch t := inv.Trigger.(type) {
	case *discord.InteractionTrigger:
		return t.Session
	case *discord.MessageTrigger:
		return t.Session
	}
	return nil
}
