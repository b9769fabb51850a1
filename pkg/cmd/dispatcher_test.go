package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/interactkit/pkg/converter"
	"github.com/keshon/interactkit/pkg/typeset"
)

type testTrigger struct{ guild, channel, user string }

func (t testTrigger) GuildID() string   { return t.guild }
func (t testTrigger) ChannelID() string { return t.channel }
func (t testTrigger) UserID() string    { return t.user }
func (t testTrigger) Raw() any          { return nil }

func takeError(t *testing.T, d *Dispatcher) error {
	t.Helper()
	select {
	case err := <-d.Errors():
		return err
	case <-time.After(time.Second):
		t.Fatal("expected an invocation error")
		return nil
	}
}

func assertNoError(t *testing.T, d *Dispatcher) {
	t.Helper()
	select {
	case err := <-d.Errors():
		t.Fatalf("unexpected invocation error: %v", err)
	default:
	}
}

func noop(inv *Invocation) error { return nil }

func TestResolveTextWalksTree(t *testing.T) {
	d := NewDispatcher()
	grp := NewGroup("music", "music commands")
	require.NoError(t, grp.Add(New("play", "play a track", noop)))
	require.NoError(t, d.Add(grp))

	command, view := d.ResolveText("music play despacito")
	require.NotNil(t, command)
	assert.Equal(t, "music play", command.FullName())

	// The view stops at the first argument token.
	w, _ := view.NextWord()
	assert.Equal(t, "despacito", w)
}

func TestResolveTextLongestPrefixWins(t *testing.T) {
	d := NewDispatcher()
	parent := New("config", "show config", noop)
	require.NoError(t, parent.Add(New("set", "set a key", noop)))
	require.NoError(t, d.Add(parent))

	command, _ := d.ResolveText("config set verbose")
	require.NotNil(t, command)
	assert.Equal(t, "config set", command.FullName())

	// A word naming no child falls back to the parent command and stays
	// unconsumed as its first argument.
	command, view := d.ResolveText("config verbose")
	require.NotNil(t, command)
	assert.Equal(t, "config", command.FullName())
	w, _ := view.NextWord()
	assert.Equal(t, "verbose", w)
}

func TestResolveTextSlashOnlyShortCircuits(t *testing.T) {
	d := NewDispatcher()
	parent := New("admin", "admin root", noop, WithKind(KindSlashOnly))
	require.NoError(t, parent.Add(New("kick", "kick a member", noop)))
	require.NoError(t, d.Add(parent))

	// The slash-only parent is returned as soon as it is named; the next
	// token is not treated as a subcommand name.
	command, view := d.ResolveText("admin kick 123")
	require.NotNil(t, command)
	assert.Equal(t, "admin", command.FullName())
	w, _ := view.NextWord()
	assert.Equal(t, "kick", w)
}

func TestResolveTextAliasesAndCaseFolding(t *testing.T) {
	d := NewDispatcher(WithRootOptions(Options{CaseInsensitive: Bool(true)}))
	require.NoError(t, d.Add(New("help", "show help", noop, WithAliases("h", "commands"))))

	for _, input := range []string{"help", "h", "commands", "HELP", "Commands"} {
		command, _ := d.ResolveText(input)
		require.NotNil(t, command, input)
		assert.Equal(t, "help", command.Name(), input)
	}

	strict := NewDispatcher()
	require.NoError(t, strict.Add(New("help", "show help", noop)))
	command, _ := strict.ResolveText("HELP")
	assert.Nil(t, command)
}

func TestExecuteTextBindsParameters(t *testing.T) {
	d := NewDispatcher()
	var got *Invocation
	require.NoError(t, d.Add(New("repeat", "repeat text", func(inv *Invocation) error {
		got = inv
		return nil
	}, WithParams(
		Parameter{Name: "text", Type: typeset.String},
		Parameter{Name: "times", Type: typeset.Int, Optional: true, Default: int64(5)},
	))))

	d.ExecuteText(context.Background(), `repeat "hello world" 3`, testTrigger{})
	assertNoError(t, d)
	require.NotNil(t, got)
	assert.Equal(t, []any{"hello world", int64(3)}, got.Args)
	assert.Equal(t, "hello world", got.StringArg("text"))
	assert.Equal(t, int64(3), got.IntArg("times"))

	// Absent optional takes its default.
	got = nil
	d.ExecuteText(context.Background(), "repeat hi", testTrigger{})
	assertNoError(t, d)
	require.NotNil(t, got)
	assert.Equal(t, []any{"hi", int64(5)}, got.Args)
}

func TestExecuteTextNotEnoughArguments(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Add(New("greet", "greet someone", noop, WithParams(
		Parameter{Name: "who", Type: typeset.String},
	))))

	d.ExecuteText(context.Background(), "greet", testTrigger{})
	err := takeError(t, d)
	assert.ErrorIs(t, err, ErrNotEnoughArguments)

	var ie *InvocationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "greet", ie.Command.Name())
}

func TestExecuteTextConversionFailed(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Add(New("wait", "wait a while", noop, WithParams(
		Parameter{Name: "delay", Type: typeset.Duration},
	))))

	d.ExecuteText(context.Background(), "wait forever", testTrigger{})
	assert.ErrorIs(t, takeError(t, d), ErrConversionFailed)
}

func TestExecuteTextUnknownCommand(t *testing.T) {
	d := NewDispatcher()
	d.ExecuteText(context.Background(), "nosuchthing", testTrigger{})
	assert.ErrorIs(t, takeError(t, d), ErrCommandNotFound)

	// Slash-only commands are not invocable as text.
	require.NoError(t, d.Add(New("panel", "control panel", noop, WithKind(KindSlashOnly))))
	d.ExecuteText(context.Background(), "panel", testTrigger{})
	assert.ErrorIs(t, takeError(t, d), ErrCommandNotFound)
}

func TestChecksRunAncestorsFirstAndShortCircuit(t *testing.T) {
	d := NewDispatcher()
	var order []string
	check := func(name string, ok bool) Check {
		return Check{Name: name, Run: func(_ context.Context, _ *Invocation) (bool, error) {
			order = append(order, name)
			return ok, nil
		}}
	}

	grp := NewGroup("guarded", "guarded commands")
	grp.AddCheck(check("outer", true))
	leaf := New("run", "run it", func(inv *Invocation) error {
		order = append(order, "handler")
		return nil
	}, WithChecks(check("inner", true)))
	require.NoError(t, grp.Add(leaf))
	require.NoError(t, d.Add(grp))

	d.ExecuteText(context.Background(), "guarded run", testTrigger{})
	assertNoError(t, d)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)

	// A failing ancestor check suppresses the descendant checks and the
	// handler.
	order = nil
	deny := NewGroup("denied", "denied commands")
	deny.AddCheck(check("deny", false))
	require.NoError(t, deny.Add(New("run", "run it", noop, WithChecks(check("never", true)))))
	require.NoError(t, d.Add(deny))

	d.ExecuteText(context.Background(), "denied run", testTrigger{})
	assert.ErrorIs(t, takeError(t, d), ErrCheckFailed)
	assert.Equal(t, []string{"deny"}, order)
}

func TestCheckErrorReported(t *testing.T) {
	d := NewDispatcher()
	boom := errors.New("storage down")
	require.NoError(t, d.Add(New("x", "x", noop, WithChecks(Check{
		Name: "failing",
		Run:  func(_ context.Context, _ *Invocation) (bool, error) { return false, boom },
	}))))

	d.ExecuteText(context.Background(), "x", testTrigger{})
	err := takeError(t, d)
	assert.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, err.Error(), "storage down")
}

func TestPrePostSignals(t *testing.T) {
	d := NewDispatcher()
	var order []string
	note := func(s string) Observer {
		return func(_ *Invocation) { order = append(order, s) }
	}

	grp := NewGroup("g", "group")
	grp.OnPreCall(note("pre-group"))
	grp.OnPostCall(note("post-group"))
	leaf := New("c", "command", func(inv *Invocation) error {
		order = append(order, "handler")
		return errors.New("handler fault")
	})
	leaf.OnPreCall(note("pre-cmd"))
	leaf.OnPostCall(note("post-cmd"))
	require.NoError(t, grp.Add(leaf))
	require.NoError(t, d.Add(grp))

	d.ExecuteText(context.Background(), "g c", testTrigger{})

	// Post-call fires even though the handler faulted.
	assert.Equal(t, []string{"pre-cmd", "pre-group", "handler", "post-cmd", "post-group"}, order)

	var ue *UncaughtError
	assert.ErrorAs(t, takeError(t, d), &ue)
}

func TestHandlerPanicBecomesUncaughtError(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Add(New("crash", "crash", func(inv *Invocation) error {
		panic("kaboom")
	})))

	d.ExecuteText(context.Background(), "crash", testTrigger{})
	err := takeError(t, d)

	var ue *UncaughtError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Error(), "kaboom")
}

func TestOptionsInheritNearestNonNil(t *testing.T) {
	d := NewDispatcher(WithRootOptions(Options{
		CaseInsensitive: Bool(true),
		Level:           LevelOf(ResponseHidden),
	}))
	grp := NewGroup("g", "group", WithGroupOptions(Options{Level: LevelOf(ResponsePublic)}))
	leaf := New("c", "command", noop)
	require.NoError(t, grp.Add(leaf))
	require.NoError(t, d.Add(grp))

	opts := leaf.Options()
	assert.True(t, opts.CaseInsensitive, "inherited from the root")
	assert.False(t, opts.Level.Hidden, "overridden by the group")
	assert.Equal(t, KindAll, opts.Kind, "default when nobody fixes one")

	fixed := New("s", "slash", noop, WithKind(KindSlashOnly))
	require.NoError(t, grp.Add(fixed))
	assert.Equal(t, KindSlashOnly, fixed.ResolvedKind())
	assert.Equal(t, KindAll, leaf.ResolvedKind())
}

func TestTreeConfigurationErrors(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Add(New("dup", "first", noop, WithAliases("d"))))

	var ce *ConfigurationError

	// Duplicate primary name.
	err := d.Add(New("dup", "second", noop))
	require.ErrorAs(t, err, &ce)

	// Alias colliding with an existing key.
	err = d.Add(New("other", "other", noop, WithAliases("d")))
	require.ErrorAs(t, err, &ce)

	// Invalid name.
	err = d.Add(New("has space", "bad", noop))
	require.ErrorAs(t, err, &ce)

	// Re-parenting an attached node.
	leaf := New("leaf", "leaf", noop)
	grp := NewGroup("grp", "group")
	require.NoError(t, grp.Add(leaf))
	require.NoError(t, d.Add(grp))
	other := NewGroup("other2", "group")
	err = other.Add(leaf)
	require.ErrorAs(t, err, &ce)
}

func TestResolvePathAndExecuteStructured(t *testing.T) {
	d := NewDispatcher()
	grp := NewGroup("settings", "settings")
	var got *Invocation
	require.NoError(t, grp.Add(New("volume", "set volume", func(inv *Invocation) error {
		got = inv
		return nil
	}, WithParams(
		Parameter{Name: "level", Type: typeset.Int},
		Parameter{Name: "announce", Type: typeset.Bool, Optional: true, Default: false},
	))))
	require.NoError(t, d.Add(grp))

	require.NotNil(t, d.ResolvePath([]string{"settings", "volume"}))
	assert.Nil(t, d.ResolvePath([]string{"settings", "nope"}))
	assert.Nil(t, d.ResolvePath([]string{"settings"}), "a group is not a command")

	// Typed values bind directly.
	d.ExecuteStructured(context.Background(), []string{"settings", "volume"},
		map[string]any{"level": int64(7)}, testTrigger{})
	assertNoError(t, d)
	require.NotNil(t, got)
	assert.Equal(t, []any{int64(7), false}, got.Args)

	// Values needing conversion go through the registry.
	got = nil
	d.ExecuteStructured(context.Background(), []string{"settings", "volume"},
		map[string]any{"level": "9", "announce": "yes"}, testTrigger{})
	assertNoError(t, d)
	require.NotNil(t, got)
	assert.Equal(t, []any{int64(9), true}, got.Args)

	// Missing required parameter.
	d.ExecuteStructured(context.Background(), []string{"settings", "volume"},
		map[string]any{}, testTrigger{})
	assert.ErrorIs(t, takeError(t, d), ErrNotEnoughArguments)
}

func TestWithTypeOfExtendsMapping(t *testing.T) {
	custom := typeset.NewInterface("custom", typeset.WithSupers(typeset.Object))
	type customValue struct{}

	d := NewDispatcher(WithTypeOf(func(v any) *typeset.Descriptor {
		if _, ok := v.(customValue); ok {
			return custom
		}
		return nil
	}))

	var got *Invocation
	require.NoError(t, d.Add(New("take", "take a custom", func(inv *Invocation) error {
		got = inv
		return nil
	}, WithParams(Parameter{Name: "v", Type: custom}))))

	d.ExecuteStructured(context.Background(), []string{"take"},
		map[string]any{"v": customValue{}}, testTrigger{})
	assertNoError(t, d)
	require.NotNil(t, got)
	assert.Equal(t, customValue{}, got.Arg("v"))

	// The primitive fallback still works.
	require.NoError(t, d.Add(New("echo", "echo", func(inv *Invocation) error { return nil },
		WithParams(Parameter{Name: "s", Type: typeset.String}))))
	d.ExecuteStructured(context.Background(), []string{"echo"},
		map[string]any{"s": "plain"}, testTrigger{})
	assertNoError(t, d)
}

func TestRegisterConverterDuplicateIsConfigurationError(t *testing.T) {
	d := NewDispatcher()

	// The defaults already cover string.
	err := d.RegisterConverter(converter.StringConverter())
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)

	custom := typeset.NewInterface("emoji", typeset.WithSupers(typeset.Object))
	require.NoError(t, d.RegisterConverter(&converter.Converter{
		Output: custom,
		Convert: func(_ context.Context, view *converter.StringView, _ converter.Invocation) (any, error) {
			w, ok := view.NextWord()
			if !ok {
				return nil, converter.ErrNoMatch
			}
			return w, nil
		},
	}))
}
