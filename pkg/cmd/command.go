package cmd

import (
	"github.com/keshon/interactkit/pkg/converter"
	"github.com/keshon/interactkit/pkg/typeset"
)

// Handler is the function a command invokes once its arguments are bound and
// its checks have passed.
type Handler func(inv *Invocation) error

// Parameter declares one argument of a command in the order handlers receive
// them. A parameter is optional iff it carries a default.
type Parameter struct {
	// Name binds the parameter in structured invocations.
	Name string
	// Type is the declared descriptor used to pick a converter.
	Type *typeset.Descriptor
	// Description is shown in the advertised command tree.
	Description string
	// Optional parameters take Default when no input is given.
	Optional bool
	// Default is the value bound when an optional parameter is absent.
	Default any
	// Choices fixes the advertised value domain, overriding the converter's.
	Choices []converter.Choice
	// Converter, when non-nil, bypasses registry resolution for this
	// parameter.
	Converter *converter.Converter
}

// Command is a leaf node with parameters and a handler. A command may still
// own children (text resolution routes through it to subcommands), which is
// how a slash-only parent with invocable children is modeled.
type Command struct {
	node
	kind    Kind
	params  []Parameter
	handler Handler
}

// CommandOption configures New.
type CommandOption func(*Command)

// WithAliases sets the command's alternate names.
func WithAliases(aliases ...string) CommandOption {
	return func(c *Command) { c.aliases = aliases }
}

// WithKind fixes the command's invocation kind instead of inheriting it.
func WithKind(k Kind) CommandOption {
	return func(c *Command) { c.kind = k }
}

// WithOptions sets the command's option overrides.
func WithOptions(o Options) CommandOption {
	return func(c *Command) { c.options = o }
}

// WithParams declares the command's parameters in binding order.
func WithParams(params ...Parameter) CommandOption {
	return func(c *Command) { c.params = params }
}

// WithChecks appends local checks.
func WithChecks(checks ...Check) CommandOption {
	return func(c *Command) { c.checks = append(c.checks, checks...) }
}

// New builds a detached command.
func New(name, description string, handler Handler, opts ...CommandOption) *Command {
	c := &Command{node: newNode(name, description, nil, Options{}), handler: handler}
	c.self = c
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add attaches a child command or group below this command.
func (c *Command) Add(child Node) error { return c.add(child) }

// Parameters returns the declared parameters in binding order.
func (c *Command) Parameters() []Parameter { return c.params }

// Options returns the effective option set for this command.
func (c *Command) Options() ResolvedOptions { return c.effectiveOptions() }

// ResolvedKind resolves the invocation kind: the command's own kind when it
// fixes one, otherwise the nearest ancestor default, otherwise both forms.
func (c *Command) ResolvedKind() Kind {
	if c.kind != KindDefault {
		return c.kind
	}
	return c.effectiveOptions().Kind
}

// requiredCount returns how many leading parameters are required.
func (c *Command) requiredCount() int {
	n := 0
	for _, p := range c.params {
		if !p.Optional {
			n++
		}
	}
	return n
}
