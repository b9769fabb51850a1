package discord

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/interactkit/pkg/cmd"
	"github.com/keshon/interactkit/pkg/converter"
	"github.com/keshon/interactkit/pkg/retrylimit"
	"github.com/keshon/interactkit/pkg/typeset"
)

// Discord nests commands at most two levels below the top-level command:
// subcommand groups and subcommands.
const maxSlashDepth = 2

// BuildApplicationCommands derives the advertised slash-command tree from
// the dispatcher's command tree: groups become commands with subcommand
// (group) options, commands carry their parameter options. Text-only
// subtrees are omitted.
func BuildApplicationCommands(d *cmd.Dispatcher) []*discordgo.ApplicationCommand {
	var out []*discordgo.ApplicationCommand
	for _, child := range d.Root().Children() {
		switch n := child.(type) {
		case *cmd.Group:
			if !n.HasSlashDescendant() {
				continue
			}
			out = append(out, &discordgo.ApplicationCommand{
				Name:        strings.ToLower(n.Name()),
				Description: nonEmpty(n.Description()),
				Type:        discordgo.ChatApplicationCommand,
				Options:     childOptions(d, n.Children(), 1),
			})
		case *cmd.Command:
			if n.ResolvedKind() == cmd.KindTextOnly {
				continue
			}
			out = append(out, &discordgo.ApplicationCommand{
				Name:        strings.ToLower(n.Name()),
				Description: nonEmpty(n.Description()),
				Type:        discordgo.ChatApplicationCommand,
				Options:     commandOptions(d, n, 1),
			})
		}
	}
	return out
}

// commandOptions returns a command's advertised options: its subcommands
// when it has invocable children, its parameters otherwise (Discord forbids
// mixing the two).
func commandOptions(d *cmd.Dispatcher, c *cmd.Command, depth int) []*discordgo.ApplicationCommandOption {
	if len(c.Children()) > 0 {
		return childOptions(d, c.Children(), depth)
	}
	return paramOptions(d, c)
}

func childOptions(d *cmd.Dispatcher, children []cmd.Node, depth int) []*discordgo.ApplicationCommandOption {
	var out []*discordgo.ApplicationCommandOption
	for _, child := range children {
		switch n := child.(type) {
		case *cmd.Group:
			if depth >= maxSlashDepth {
				log.Printf("[WARN] Group %q is too deep for slash advertisement, skipping", n.FullName())
				continue
			}
			if !n.HasSlashDescendant() {
				continue
			}
			out = append(out, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        strings.ToLower(n.Name()),
				Description: nonEmpty(n.Description()),
				Options:     childOptions(d, n.Children(), depth+1),
			})
		case *cmd.Command:
			if n.ResolvedKind() == cmd.KindTextOnly {
				continue
			}
			out = append(out, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        strings.ToLower(n.Name()),
				Description: nonEmpty(n.Description()),
				Options:     paramOptions(d, n),
			})
		}
	}
	return out
}

func paramOptions(d *cmd.Dispatcher, c *cmd.Command) []*discordgo.ApplicationCommandOption {
	var out []*discordgo.ApplicationCommandOption
	for _, p := range c.Parameters() {
		opt := &discordgo.ApplicationCommandOption{
			Type:        optionType(p.Type),
			Name:        strings.ToLower(p.Name),
			Description: nonEmpty(p.Description),
			Required:    !p.Optional,
		}
		for _, choice := range p.Choices {
			opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  choice.Name,
				Value: choice.Value,
			})
		}
		applyConverterChoices(d, opt, p)
		out = append(out, opt)
	}
	return out
}

// optionType maps a declared descriptor to the platform's scalar option
// kinds. Unknown descriptors advertise as strings and rely on converters.
func optionType(t *typeset.Descriptor) discordgo.ApplicationCommandOptionType {
	switch t.Name() {
	case typeset.Int.Name():
		return discordgo.ApplicationCommandOptionInteger
	case typeset.Float.Name():
		return discordgo.ApplicationCommandOptionNumber
	case typeset.Bool.Name():
		return discordgo.ApplicationCommandOptionBoolean
	case typeset.User.Name(), typeset.Member.Name():
		return discordgo.ApplicationCommandOptionUser
	case typeset.Channel.Name():
		return discordgo.ApplicationCommandOptionChannel
	case typeset.Role.Name():
		return discordgo.ApplicationCommandOptionRole
	case typeset.Mentionable.Name():
		return discordgo.ApplicationCommandOptionMentionable
	case typeset.Attachment.Name():
		return discordgo.ApplicationCommandOptionAttachment
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

func nonEmpty(desc string) string {
	if desc == "" {
		return "No description"
	}
	return desc
}

// syncCommands reconciles the advertised tree with what the guild already
// has: obsolete commands are deleted, changed ones re-created, unchanged
// ones left alone. Hashes keep restarts cheap; creation is rate limited.
func (b *Bot) syncCommands(guildID string) error {
	appID := b.session.State.User.ID
	if appID == "" {
		user, err := b.session.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	wanted := BuildApplicationCommands(b.dispatcher)
	wantedHashes := make(map[string]string, len(wanted))
	for _, c := range wanted {
		wantedHashes[c.Name] = hashCommand(c)
	}

	existing, err := b.session.ApplicationCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("list commands: %w", err)
	}
	existingNames := make(map[string]bool, len(existing))

	for _, old := range existing {
		if _, keep := wantedHashes[old.Name]; !keep {
			log.Printf("[INFO] [%s] Deleting obsolete command: %s", guildID, old.Name)
			if err := b.session.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				log.Printf("[ERR] [%s] Failed to delete %s: %v", guildID, old.Name, err)
			}
			continue
		}
		existingNames[old.Name] = true
	}

	cached := b.loadCommandHashes(guildID)
	var changed []*discordgo.ApplicationCommand
	for _, c := range wanted {
		if cached[c.Name] != wantedHashes[c.Name] || !existingNames[c.Name] {
			changed = append(changed, c)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	log.Printf("[INFO] [%s] %d commands changed, updating with rate limit...", guildID, len(changed))
	limiter := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
	retryCfg := retrylimit.DefaultConfig()
	retryCfg.MaxAttempts = 5
	retryCfg.Backpressure = restBackpressure
	ctx := context.Background()
	for _, c := range changed {
		command := c
		err := retrylimit.WithRetryConfig(ctx, func() error {
			_, cerr := b.session.ApplicationCommandCreate(appID, guildID, command)
			return cerr
		}, limiter, retryCfg)
		if err != nil {
			log.Printf("[ERR] [%s] Can't create command %s: %v", guildID, command.Name, err)
			continue
		}
		log.Printf("[DONE] [%s] Command created: %s", guildID, command.Name)
		cached[command.Name] = wantedHashes[command.Name]
	}

	b.saveCommandHashes(guildID, cached)
	return nil
}

// restBackpressure classifies REST failures that should slow command creation
// down: explicit rate limits and server-side errors.
func restBackpressure(err error) bool {
	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		code := rest.Response.StatusCode
		return code == 429 || code >= 500
	}
	return false
}

// hashCommand fingerprints an advertised command, ignoring runtime-only
// fields, so unchanged commands survive restarts without API calls.
func hashCommand(c *discordgo.ApplicationCommand) string {
	normalized := map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
	}
	if len(c.Options) > 0 {
		normalized["options"] = normalizeOptions(c.Options)
	}
	data, _ := json.Marshal(normalized)
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]any, len(o.Choices))
			for j, c := range o.Choices {
				choices[j] = map[string]any{"name": c.Name, "value": c.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}

// The per-guild hash cache lives in memory; guild handlers run on the
// session's event goroutines, hence the lock. A cold start re-lists the
// guild's commands anyway, so losing the cache across restarts only costs
// one reconcile pass.
var (
	hashMu       sync.Mutex
	memoryHashes = map[string]map[string]string{}
)

func (b *Bot) loadCommandHashes(guildID string) map[string]string {
	hashMu.Lock()
	defer hashMu.Unlock()
	out := map[string]string{}
	for name, h := range memoryHashes[guildID] {
		out[name] = h
	}
	return out
}

func (b *Bot) saveCommandHashes(guildID string, hashes map[string]string) {
	hashMu.Lock()
	defer hashMu.Unlock()
	memoryHashes[guildID] = hashes
}

// Exercise converter choices in advertisement: parameters without explicit
// choices inherit the fixed domain of the converter that will bind them.
func applyConverterChoices(d *cmd.Dispatcher, opt *discordgo.ApplicationCommandOption, p cmd.Parameter) {
	if len(opt.Choices) > 0 {
		return
	}
	var conv *converter.Converter
	if p.Converter != nil {
		conv = p.Converter
	} else {
		conv = d.Converters().Lookup(p.Type)
	}
	if conv == nil {
		return
	}
	for _, choice := range conv.Choices {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  choice.Name,
			Value: choice.Value,
		})
	}
}
