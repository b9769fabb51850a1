// Package converter turns raw tokens into typed argument values. A Converter
// declares the descriptor of the values it produces; the Registry picks a
// converter for a declared parameter type through the typeset lattice when no
// exact match is registered.
package converter

import (
	"context"
	"errors"

	"github.com/keshon/interactkit/pkg/typeset"
)

// ErrNoMatch is returned by a converter that cannot make sense of the input.
// The registry wraps it; converters must leave the view untouched when they
// return it (read through a fork, commit only on success).
var ErrNoMatch = errors.New("no match")

// Invocation is the slice of the command invocation a converter may consult
// (e.g. to resolve a member name within the right guild). The dispatcher's
// trigger implements it; transports may expose richer concrete types behind it.
type Invocation interface {
	GuildID() string
	ChannelID() string
	UserID() string
}

// Choice is a fixed candidate value a converter or parameter advertises.
type Choice struct {
	Name  string
	Value any
}

// ConvertFunc maps the next token(s) of the view to a value, or ErrNoMatch.
type ConvertFunc func(ctx context.Context, view *StringView, inv Invocation) (any, error)

// Converter produces values of one descriptor from raw input. The presentation
// hooks are optional; selection UIs fall back to fmt.Sprint when they are nil.
type Converter struct {
	// Output is the descriptor of produced values. Required.
	Output *typeset.Descriptor

	// Convert performs the conversion. Required.
	Convert ConvertFunc

	// Choices, when non-empty, is the fixed value domain to advertise to the
	// platform for parameters of this type.
	Choices []Choice

	// ButtonLabel renders a value as a button label for interactive selection.
	ButtonLabel func(v any) string

	// OptionLabel renders a value as a select-menu option.
	OptionLabel func(v any) (label, value string)
}
