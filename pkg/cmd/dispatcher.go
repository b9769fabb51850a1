package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/keshon/interactkit/pkg/converter"
	"github.com/keshon/interactkit/pkg/typeset"
)

// Dispatcher owns the command tree root, the converter registry, and the
// process-wide invocation error channel. One dispatcher per bot process.
type Dispatcher struct {
	root       *Group
	converters *converter.Registry
	typeOf     func(v any) *typeset.Descriptor
	errs       chan error
}

// DispatcherOption configures NewDispatcher.
type DispatcherOption func(*Dispatcher)

// WithRootOptions sets option defaults inherited by the whole tree.
func WithRootOptions(o Options) DispatcherOption {
	return func(d *Dispatcher) { d.root.options = o }
}

// WithTypeOf extends the mapping from runtime values to lattice descriptors.
// The dispatcher falls back to the built-in primitive mapping when fn returns
// nil.
func WithTypeOf(fn func(v any) *typeset.Descriptor) DispatcherOption {
	return func(d *Dispatcher) {
		base := d.typeOf
		d.typeOf = func(v any) *typeset.Descriptor {
			if t := fn(v); t != nil {
				return t
			}
			return base(v)
		}
	}
}

// NewDispatcher builds a dispatcher with the default converters installed.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	root := NewGroup("root", "command tree root")
	root.name = "" // the root is anonymous; children are the top level
	d := &Dispatcher{
		root:       root,
		converters: converter.NewRegistry(),
		typeOf:     primitiveTypeOf,
		errs:       make(chan error, 32),
	}
	if err := converter.RegisterDefaults(d.converters); err != nil {
		panic(&ConfigurationError{Msg: "default converters", Err: err})
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Root returns the tree root.
func (d *Dispatcher) Root() *Group { return d.root }

// Converters returns the converter registry.
func (d *Dispatcher) Converters() *converter.Registry { return d.converters }

// Add attaches a top-level command or group.
func (d *Dispatcher) Add(n Node) error { return d.root.Add(n) }

// MustAdd attaches a top-level node and panics on configuration errors.
func (d *Dispatcher) MustAdd(n Node) { d.root.MustAdd(n) }

// RegisterConverter adds a converter; a duplicate exact output type is a
// configuration error.
func (d *Dispatcher) RegisterConverter(c *converter.Converter) error {
	if err := d.converters.Register(c); err != nil {
		return &ConfigurationError{Msg: "register converter", Err: err}
	}
	return nil
}

// Errors exposes the invocation error channel. Invocation failures are
// reported here rather than thrown back into the event source; the transport
// adapter drains it.
func (d *Dispatcher) Errors() <-chan error { return d.errs }

func (d *Dispatcher) report(c *Command, err error) {
	wrapped := &InvocationError{Command: c, Err: err}
	select {
	case d.errs <- wrapped:
	default:
		log.Println("[WARN] error channel full, dropping:", wrapped)
	}
}

// ResolveText resolves prefixed message content to a command, leaving the
// view positioned at the first argument token. Returns nil on no match.
func (d *Dispatcher) ResolveText(content string) (*Command, *converter.StringView) {
	view := converter.NewStringView(content)
	return d.root.resolve(view), view
}

// ExecuteText runs the full text pipeline for prefixed message content:
// resolve, bind from the remaining tokens, checks, signals, handler. All
// failures are reported on the error channel.
func (d *Dispatcher) ExecuteText(ctx context.Context, content string, trig Trigger) {
	command, view := d.ResolveText(content)
	if command == nil {
		d.report(nil, fmt.Errorf("%w: %q", ErrCommandNotFound, content))
		return
	}
	if command.ResolvedKind() == KindSlashOnly {
		d.report(command, fmt.Errorf("%w: %q is slash-only", ErrCommandNotFound, command.FullName()))
		return
	}

	inv := &Invocation{Ctx: ctx, Command: command, Trigger: trig}
	if err := d.bindText(inv, view); err != nil {
		d.report(command, err)
		return
	}
	d.invoke(inv)
}

// ResolvePath resolves a structured invocation path (command, subcommand
// group, subcommand) to a command. Structured names are matched exactly.
func (d *Dispatcher) ResolvePath(path []string) *Command {
	cur := &d.root.node
	var found *Command
	for _, name := range path {
		child := cur.lookup(name, false)
		if child == nil {
			return nil
		}
		cur = child.base()
		found, _ = child.(*Command)
	}
	return found
}

// ExecuteStructured runs the structured pipeline: resolve the path, bind the
// named inputs, checks, signals, handler.
func (d *Dispatcher) ExecuteStructured(ctx context.Context, path []string, args map[string]any, trig Trigger) {
	command := d.ResolvePath(path)
	if command == nil {
		d.report(nil, fmt.Errorf("%w: %v", ErrCommandNotFound, path))
		return
	}

	inv := &Invocation{Ctx: ctx, Command: command, Trigger: trig}
	if err := d.bindStructured(inv, args); err != nil {
		d.report(command, err)
		return
	}
	d.invoke(inv)
}

// bindText walks declared parameters in order, converting consecutive tokens
// from the view. It stops early when the view is exhausted; unbound optional
// parameters take their defaults, an unbound required parameter is
// NotEnoughArguments.
func (d *Dispatcher) bindText(inv *Invocation, view *converter.StringView) error {
	command := inv.Command
	inv.Named = make(map[string]any, len(command.params))

	bound := 0
	for _, p := range command.params {
		if view.Exhausted() {
			break
		}
		v, err := d.converters.Convert(inv.Ctx, view, inv, p.Type, p.Converter)
		if err != nil {
			return fmt.Errorf("%w: parameter %q: %v", ErrConversionFailed, p.Name, err)
		}
		inv.Args = append(inv.Args, v)
		inv.Named[p.Name] = v
		bound++
	}

	if bound < command.requiredCount() {
		return fmt.Errorf("%w: got %d of %d required", ErrNotEnoughArguments, bound, command.requiredCount())
	}
	for _, p := range command.params[bound:] {
		inv.Args = append(inv.Args, p.Default)
		inv.Named[p.Name] = p.Default
	}
	return nil
}

// bindStructured binds named inputs: absent parameters take their defaults,
// values already assignable to the declared type bind directly, everything
// else goes through the converter registry.
func (d *Dispatcher) bindStructured(inv *Invocation, args map[string]any) error {
	command := inv.Command
	inv.Named = make(map[string]any, len(command.params))

	for _, p := range command.params {
		raw, present := args[p.Name]
		if !present {
			if !p.Optional {
				return fmt.Errorf("%w: missing required parameter %q", ErrNotEnoughArguments, p.Name)
			}
			inv.Args = append(inv.Args, p.Default)
			inv.Named[p.Name] = p.Default
			continue
		}

		if t := d.typeOf(raw); t != nil && typeset.Assignable(t, p.Type) {
			inv.Args = append(inv.Args, raw)
			inv.Named[p.Name] = raw
			continue
		}

		view := converter.NewStringView(fmt.Sprint(raw))
		v, err := d.converters.Convert(inv.Ctx, view, inv, p.Type, p.Converter)
		if err != nil {
			return fmt.Errorf("%w: parameter %q: %v", ErrConversionFailed, p.Name, err)
		}
		inv.Args = append(inv.Args, v)
		inv.Named[p.Name] = v
	}
	return nil
}

// invoke runs checks, emits the pre-call signal, executes the handler with
// panic recovery, and emits the post-call signal. The post-call signal fires
// whether or not the handler faulted.
func (d *Dispatcher) invoke(inv *Invocation) {
	command := inv.Command

	for _, check := range command.effectiveChecks() {
		ok, err := check.Run(inv.Ctx, inv)
		if err != nil {
			d.report(command, fmt.Errorf("%w: %s: %v", ErrCheckFailed, check.Name, err))
			return
		}
		if !ok {
			d.report(command, fmt.Errorf("%w: %s", ErrCheckFailed, check.Name))
			return
		}
	}

	command.emitPre(inv)
	if err := d.runHandler(inv); err != nil {
		d.report(command, &UncaughtError{Err: err})
	}
	command.emitPost(inv)
}

func (d *Dispatcher) runHandler(inv *Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	if inv.Command.handler == nil {
		return nil
	}
	return inv.Command.handler(inv)
}

// primitiveTypeOf maps plain runtime values to well-known descriptors.
func primitiveTypeOf(v any) *typeset.Descriptor {
	switch v.(type) {
	case string:
		return typeset.String
	case int, int32, int64:
		return typeset.Int
	case float32, float64:
		return typeset.Float
	case bool:
		return typeset.Bool
	case time.Duration:
		return typeset.Duration
	}
	return nil
}
