// Package discord adapts the command engine to the Discord gateway: it
// routes messages and interactions into the dispatcher, feeds component and
// modal events into the interactive listener table, advertises the
// slash-command tree, and implements the engine's publisher.
package discord

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/interactkit/internal/config"
	"github.com/keshon/interactkit/internal/storage"
	"github.com/keshon/interactkit/pkg/cmd"
	"github.com/keshon/interactkit/pkg/interact"
)

// Bot is a Discord bot running one dispatcher and one interactive engine.
type Bot struct {
	cfg        *config.Config
	storage    *storage.Storage
	dispatcher *cmd.Dispatcher
	table      *interact.ListenerTable
	engine     *interact.Engine
	session    *discordgo.Session
}

// NewBot wires a bot around an already-built command tree.
func NewBot(cfg *config.Config, store *storage.Storage, dispatcher *cmd.Dispatcher) *Bot {
	return &Bot{
		cfg:        cfg,
		storage:    store,
		dispatcher: dispatcher,
		table:      interact.NewListenerTable(),
	}
}

// Engine returns the interactive engine. Valid after Run has opened the
// session.
func (b *Bot) Engine() *interact.Engine { return b.engine }

// Session returns the live session. Valid after Run has opened it.
func (b *Bot) Session() *discordgo.Session { return b.session }

// Run opens the gateway session and blocks until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.session = dg
	b.engine = interact.NewEngine(b.table, &publisher{session: dg}, b.cfg.InteractionTimeout)

	if err := RegisterEntityConverters(b.dispatcher, dg); err != nil {
		return err
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	go b.drainErrors(ctx)

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Cleaning up...")
	return nil
}

// drainErrors surfaces invocation failures. Errors never travel back into
// the event source; this is their only exit.
func (b *Bot) drainErrors(ctx context.Context) {
	for {
		select {
		case err := <-b.dispatcher.Errors():
			log.Println("[ERR] invocation:", err)
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		if b.isGuildBlacklisted(g.ID) {
			log.Printf("[INFO] Leaving blacklisted guild: %s", g.ID)
			if err := s.GuildLeave(g.ID); err != nil {
				log.Printf("[ERR] Failed to leave guild %s: %v", g.ID, err)
			}
			continue
		}
		if b.cfg.InitSlashCommands {
			if err := b.syncCommands(g.ID); err != nil {
				log.Printf("[ERR] Failed to register commands for guild %s: %v", g.ID, err)
			}
		}
	}
	log.Printf("[INFO] ✅ Bot %s is running.", s.State.User.Username)
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.isGuildBlacklisted(g.Guild.ID) {
		log.Printf("[INFO] Leaving blacklisted guild: %s (%s)", g.Guild.ID, g.Guild.Name)
		if err := s.GuildLeave(g.Guild.ID); err != nil {
			log.Printf("[ERR] Failed to leave guild %s: %v", g.Guild.ID, err)
		}
		return
	}
	if b.cfg.InitSlashCommands {
		if err := b.syncCommands(g.Guild.ID); err != nil {
			log.Printf("[ERR] Failed to register commands for new guild %s: %v", g.Guild.ID, err)
		}
	}
}

// onMessageCreate feeds prefixed messages into the text pipeline.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	if !strings.HasPrefix(m.Content, b.cfg.Prefix) {
		return
	}
	content := strings.TrimPrefix(m.Content, b.cfg.Prefix)
	b.dispatcher.ExecuteText(context.Background(), content, NewMessageTrigger(s, m))
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleApplicationCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	case discordgo.InteractionModalSubmit:
		b.handleModalSubmit(s, i)
	}
}

// handleApplicationCommand flattens the interaction's subcommand path and
// option values and runs the structured pipeline.
func (b *Bot) handleApplicationCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	path := []string{data.Name}
	options := data.Options

	for len(options) == 1 &&
		(options[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup ||
			options[0].Type == discordgo.ApplicationCommandOptionSubCommand) {
		path = append(path, options[0].Name)
		options = options[0].Options
	}

	args := make(map[string]any, len(options))
	for _, opt := range options {
		args[opt.Name] = optionValue(s, opt)
	}

	trig := NewInteractionTrigger(s, i)
	if command := b.dispatcher.ResolvePath(path); command != nil && command.Options().AutoAcknowledge {
		if err := Defer(trig, command.Options().Level.Hidden); err != nil {
			log.Println("[WARN] Failed to defer interaction:", err)
		}
	}
	b.dispatcher.ExecuteStructured(context.Background(), path, args, trig)
}

// optionValue extracts the typed value of a slash-command option. Entities
// come out as resolved discordgo structs so binding can take them directly.
func optionValue(s *discordgo.Session, opt *discordgo.ApplicationCommandInteractionDataOption) any {
	switch opt.Type {
	case discordgo.ApplicationCommandOptionString:
		return opt.StringValue()
	case discordgo.ApplicationCommandOptionInteger:
		return opt.IntValue()
	case discordgo.ApplicationCommandOptionNumber:
		return opt.FloatValue()
	case discordgo.ApplicationCommandOptionBoolean:
		return opt.BoolValue()
	case discordgo.ApplicationCommandOptionUser:
		return opt.UserValue(s)
	case discordgo.ApplicationCommandOptionChannel:
		return opt.ChannelValue(s)
	case discordgo.ApplicationCommandOptionRole:
		return opt.RoleValue(s, "")
	default:
		return opt.Value
	}
}

// handleComponent correlates a button or menu interaction with its waiting
// listener and acknowledges it so the click never shows as failed.
func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()

	kind := interact.EventButton
	if data.ComponentType == discordgo.SelectMenuComponent {
		kind = interact.EventSelect
	}
	ev := interact.Event{
		Kind:        kind,
		ComponentID: data.CustomID,
		Values:      data.Values,
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		UserID:      interactionUserID(i),
		Raw:         i,
	}

	delivered := b.table.Dispatch(ev)
	if delivered {
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		}); err != nil {
			log.Println("[WARN] Failed to ack component:", err)
		}
		return
	}

	// No live listener: stale component or a user-restricted one.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "This component is no longer active.",
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		log.Println("[WARN] Failed to answer stale component:", err)
	}
}

// handleModalSubmit correlates a modal submission with its waiting listener.
func (b *Bot) handleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()

	fields := make(map[string]string)
	for _, row := range data.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, item := range ar.Components {
			if input, ok := item.(*discordgo.TextInput); ok {
				fields[input.CustomID] = input.Value
			}
		}
	}

	ev := interact.Event{
		Kind:        interact.EventModal,
		ComponentID: data.CustomID,
		Fields:      fields,
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		UserID:      interactionUserID(i),
		Raw:         i,
	}

	if b.table.Dispatch(ev) {
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		}); err != nil {
			log.Println("[WARN] Failed to ack modal submit:", err)
		}
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "This form is no longer active.",
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		log.Println("[WARN] Failed to answer stale modal:", err)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.GuildBlacklist, guildID)
}
