package converter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/keshon/interactkit/pkg/typeset"
)

// RegisterDefaults installs the transport-independent converters: string, int,
// float, bool, duration and snowflake. Transport adapters add entity
// converters (user, member, channel, role) on top.
func RegisterDefaults(r *Registry) error {
	defaults := []*Converter{
		StringConverter(),
		IntConverter(),
		FloatConverter(),
		BoolConverter(),
		DurationConverter(),
		SnowflakeConverter(),
	}
	for _, c := range defaults {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// StringConverter consumes one (possibly quoted) word.
func StringConverter() *Converter {
	return &Converter{
		Output: typeset.String,
		Convert: func(_ context.Context, view *StringView, _ Invocation) (any, error) {
			word, ok := view.NextWord()
			if !ok {
				return nil, ErrNoMatch
			}
			return word, nil
		},
	}
}

// IntConverter parses one word as a base-10 integer.
func IntConverter() *Converter {
	return &Converter{
		Output: typeset.Int,
		Convert: func(_ context.Context, view *StringView, _ Invocation) (any, error) {
			word, ok := view.NextWord()
			if !ok {
				return nil, ErrNoMatch
			}
			n, err := strconv.ParseInt(word, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not an integer: %w", word, ErrNoMatch)
			}
			return n, nil
		},
	}
}

// FloatConverter parses one word as a float.
func FloatConverter() *Converter {
	return &Converter{
		Output: typeset.Float,
		Convert: func(_ context.Context, view *StringView, _ Invocation) (any, error) {
			word, ok := view.NextWord()
			if !ok {
				return nil, ErrNoMatch
			}
			f, err := strconv.ParseFloat(word, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not a number: %w", word, ErrNoMatch)
			}
			return f, nil
		},
	}
}

// BoolConverter accepts the usual spellings of yes and no.
func BoolConverter() *Converter {
	return &Converter{
		Output: typeset.Bool,
		Choices: []Choice{
			{Name: "yes", Value: true},
			{Name: "no", Value: false},
		},
		ButtonLabel: func(v any) string {
			if b, _ := v.(bool); b {
				return "Yes"
			}
			return "No"
		},
		Convert: func(_ context.Context, view *StringView, _ Invocation) (any, error) {
			word, ok := view.NextWord()
			if !ok {
				return nil, ErrNoMatch
			}
			switch strings.ToLower(word) {
			case "true", "yes", "y", "on", "1":
				return true, nil
			case "false", "no", "n", "off", "0":
				return false, nil
			}
			return nil, fmt.Errorf("%q is not a boolean: %w", word, ErrNoMatch)
		},
	}
}

// DurationConverter parses one word in Go duration syntax ("90s", "2h15m").
func DurationConverter() *Converter {
	return &Converter{
		Output: typeset.Duration,
		Convert: func(_ context.Context, view *StringView, _ Invocation) (any, error) {
			word, ok := view.NextWord()
			if !ok {
				return nil, ErrNoMatch
			}
			d, err := time.ParseDuration(word)
			if err != nil {
				return nil, fmt.Errorf("%q is not a duration: %w", word, ErrNoMatch)
			}
			return d, nil
		},
	}
}

// SnowflakeConverter accepts a bare numeric id or a <@...>/<#...>/<@&...>
// mention and yields the id string.
func SnowflakeConverter() *Converter {
	return &Converter{
		Output: typeset.Snowflake,
		Convert: func(_ context.Context, view *StringView, _ Invocation) (any, error) {
			word, ok := view.NextWord()
			if !ok {
				return nil, ErrNoMatch
			}
			id, ok := ParseSnowflake(word)
			if !ok {
				return nil, fmt.Errorf("%q is not an id or mention: %w", word, ErrNoMatch)
			}
			return id, nil
		},
	}
}

// ParseSnowflake extracts the id from a raw snowflake or a mention token.
func ParseSnowflake(word string) (string, bool) {
	s := word
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
		s = strings.TrimPrefix(s, "@")
		s = strings.TrimPrefix(s, "!")
		s = strings.TrimPrefix(s, "&")
		s = strings.TrimPrefix(s, "#")
	}
	if s == "" {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", false
		}
	}
	return s, true
}
