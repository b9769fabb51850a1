package cmd

import "context"

// Trigger is the transport payload behind an invocation: where it happened,
// who caused it, and the raw platform event for adapters that need it.
type Trigger interface {
	GuildID() string
	ChannelID() string
	UserID() string
	Raw() any
}

// Invocation carries one command call through the pipeline: the resolved
// command, the bound arguments, and the trigger. It implements
// converter.Invocation so converters can consult the call site.
type Invocation struct {
	Ctx     context.Context
	Command *Command
	Trigger Trigger

	// Args holds the bound values in parameter order.
	Args []any
	// Named holds the same values keyed by parameter name.
	Named map[string]any
}

// GuildID implements converter.Invocation.
func (inv *Invocation) GuildID() string {
	if inv.Trigger == nil {
		return ""
	}
	return inv.Trigger.GuildID()
}

// ChannelID implements converter.Invocation.
func (inv *Invocation) ChannelID() string {
	if inv.Trigger == nil {
		return ""
	}
	return inv.Trigger.ChannelID()
}

// UserID implements converter.Invocation.
func (inv *Invocation) UserID() string {
	if inv.Trigger == nil {
		return ""
	}
	return inv.Trigger.UserID()
}

// Arg returns the bound value for a parameter name, or nil.
func (inv *Invocation) Arg(name string) any { return inv.Named[name] }

// StringArg returns a bound string argument, or "" when absent or not a
// string.
func (inv *Invocation) StringArg(name string) string {
	s, _ := inv.Named[name].(string)
	return s
}

// IntArg returns a bound integer argument, or 0.
func (inv *Invocation) IntArg(name string) int64 {
	n, _ := inv.Named[name].(int64)
	return n
}

// BoolArg returns a bound boolean argument, or false.
func (inv *Invocation) BoolArg(name string) bool {
	b, _ := inv.Named[name].(bool)
	return b
}
