package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/interactkit/pkg/cmd"
	"github.com/keshon/interactkit/pkg/converter"
	"github.com/keshon/interactkit/pkg/typeset"
)

// EntityTypeOf maps Discord runtime values to lattice descriptors, extending
// the dispatcher's primitive mapping. Wire it with cmd.WithTypeOf.
func EntityTypeOf(v any) *typeset.Descriptor {
	switch v.(type) {
	case *discordgo.User:
		return typeset.User
	case *discordgo.Member:
		return typeset.Member
	case *discordgo.Channel:
		return typeset.Channel
	case *discordgo.Role:
		return typeset.Role
	case *discordgo.MessageAttachment:
		return typeset.Attachment
	}
	return nil
}

// RegisterEntityConverters installs the Discord entity converters. They parse
// a mention or bare id token and resolve it against the session, state cache
// first.
func RegisterEntityConverters(d *cmd.Dispatcher, s *discordgo.Session) error {
	convs := []*converter.Converter{
		userConverter(s),
		memberConverter(s),
		channelConverter(s),
		roleConverter(s),
	}
	for _, c := range convs {
		if err := d.RegisterConverter(c); err != nil {
			return err
		}
	}
	return nil
}

func nextSnowflake(view *converter.StringView) (string, error) {
	word, ok := view.NextWord()
	if !ok {
		return "", converter.ErrNoMatch
	}
	id, ok := converter.ParseSnowflake(word)
	if !ok {
		return "", fmt.Errorf("%q is not an id or mention: %w", word, converter.ErrNoMatch)
	}
	return id, nil
}

func userConverter(s *discordgo.Session) *converter.Converter {
	return &converter.Converter{
		Output: typeset.User,
		ButtonLabel: func(v any) string {
			if u, ok := v.(*discordgo.User); ok {
				return u.Username
			}
			return fmt.Sprint(v)
		},
		Convert: func(_ context.Context, view *converter.StringView, _ converter.Invocation) (any, error) {
			id, err := nextSnowflake(view)
			if err != nil {
				return nil, err
			}
			user, err := s.User(id)
			if err != nil {
				return nil, fmt.Errorf("unknown user %s: %w", id, converter.ErrNoMatch)
			}
			return user, nil
		},
	}
}

func memberConverter(s *discordgo.Session) *converter.Converter {
	return &converter.Converter{
		Output: typeset.Member,
		ButtonLabel: func(v any) string {
			if m, ok := v.(*discordgo.Member); ok && m.User != nil {
				return m.User.Username
			}
			return fmt.Sprint(v)
		},
		Convert: func(_ context.Context, view *converter.StringView, inv converter.Invocation) (any, error) {
			id, err := nextSnowflake(view)
			if err != nil {
				return nil, err
			}
			guildID := inv.GuildID()
			if guildID == "" {
				return nil, fmt.Errorf("member lookup outside a guild: %w", converter.ErrNoMatch)
			}
			member, err := s.State.Member(guildID, id)
			if err != nil {
				member, err = s.GuildMember(guildID, id)
				if err != nil {
					return nil, fmt.Errorf("unknown member %s: %w", id, converter.ErrNoMatch)
				}
			}
			return member, nil
		},
	}
}

func channelConverter(s *discordgo.Session) *converter.Converter {
	return &converter.Converter{
		Output: typeset.Channel,
		Convert: func(_ context.Context, view *converter.StringView, _ converter.Invocation) (any, error) {
			id, err := nextSnowflake(view)
			if err != nil {
				return nil, err
			}
			channel, err := s.State.Channel(id)
			if err != nil {
				channel, err = s.Channel(id)
				if err != nil {
					return nil, fmt.Errorf("unknown channel %s: %w", id, converter.ErrNoMatch)
				}
			}
			return channel, nil
		},
	}
}

func roleConverter(s *discordgo.Session) *converter.Converter {
	return &converter.Converter{
		Output: typeset.Role,
		Convert: func(_ context.Context, view *converter.StringView, inv converter.Invocation) (any, error) {
			id, err := nextSnowflake(view)
			if err != nil {
				return nil, err
			}
			guildID := inv.GuildID()
			if guildID == "" {
				return nil, fmt.Errorf("role lookup outside a guild: %w", converter.ErrNoMatch)
			}
			role, err := s.State.Role(guildID, id)
			if err != nil {
				return nil, fmt.Errorf("unknown role %s: %w", id, converter.ErrNoMatch)
			}
			return role, nil
		},
	}
}
