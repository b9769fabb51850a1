package converter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/interactkit/pkg/typeset"
)

type fakeInvocation struct{ guild, channel, user string }

func (f fakeInvocation) GuildID() string   { return f.guild }
func (f fakeInvocation) ChannelID() string { return f.channel }
func (f fakeInvocation) UserID() string    { return f.user }

func staticConverter(out *typeset.Descriptor, v any) *Converter {
	return &Converter{
		Output: out,
		Convert: func(_ context.Context, view *StringView, _ Invocation) (any, error) {
			if _, ok := view.NextWord(); !ok {
				return nil, ErrNoMatch
			}
			return v, nil
		},
	}
}

func TestRegisterRejectsDuplicatesAndIncomplete(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(staticConverter(typeset.String, "x")))

	err := r.Register(staticConverter(typeset.String, "y"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Error(t, r.Register(&Converter{Output: typeset.Int}))
	assert.Error(t, r.Register(&Converter{Convert: staticConverter(typeset.Int, 1).Convert}))
	assert.Error(t, r.Register(nil))

	// Nullable string is a different exact type.
	assert.NoError(t, r.Register(staticConverter(typeset.String.Nullable(), "z")))
}

func TestLookupExactBeforeAssignable(t *testing.T) {
	r := NewRegistry()
	userConv := staticConverter(typeset.User, "user")
	memberConv := staticConverter(typeset.Member, "member")
	require.NoError(t, r.Register(userConv))
	require.NoError(t, r.Register(memberConv))

	assert.Same(t, userConv, r.Lookup(typeset.User))
	assert.Same(t, memberConv, r.Lookup(typeset.Member))
}

func TestLookupMostSpecific(t *testing.T) {
	r := NewRegistry()
	userConv := staticConverter(typeset.User, "user")
	memberConv := staticConverter(typeset.Member, "member")
	require.NoError(t, r.Register(userConv))
	require.NoError(t, r.Register(memberConv))

	// No converter outputs mentionable exactly; member is the most specific
	// assignable output.
	assert.Same(t, memberConv, r.Lookup(typeset.Mentionable))
	assert.Nil(t, r.Lookup(typeset.Channel))
}

func TestLookupTieKeepsRegistrationOrder(t *testing.T) {
	// Two siblings both assignable to the declared type, neither more
	// specific than the other: the earlier registration wins.
	first := staticConverter(typeset.User, "first")
	second := staticConverter(typeset.Role, "second")

	r := NewRegistry()
	require.NoError(t, r.Register(first))
	require.NoError(t, r.Register(second))
	assert.Same(t, first, r.Lookup(typeset.Mentionable))

	r2 := NewRegistry()
	require.NoError(t, r2.Register(second))
	require.NoError(t, r2.Register(first))
	assert.Same(t, second, r2.Lookup(typeset.Mentionable))
}

func TestConvertTransactionalView(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(IntConverter()))

	view := NewStringView("notanumber 42")
	_, err := r.Convert(context.Background(), view, fakeInvocation{}, typeset.Int, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMatch)

	// The failed conversion consumed nothing.
	assert.Equal(t, 0, view.Index())

	w, _ := view.NextWord()
	assert.Equal(t, "notanumber", w)

	v, err := r.Convert(context.Background(), view, fakeInvocation{}, typeset.Int, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
	assert.True(t, view.Exhausted())
}

func TestConvertOverrideBypassesResolution(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(StringConverter()))

	override := staticConverter(typeset.String, "forced")
	view := NewStringView("anything")
	v, err := r.Convert(context.Background(), view, fakeInvocation{}, typeset.String, override)
	require.NoError(t, err)
	assert.Equal(t, "forced", v)
}

func TestConvertNoConverter(t *testing.T) {
	r := NewRegistry()
	_, err := r.Convert(context.Background(), NewStringView("x"), fakeInvocation{}, typeset.Channel, nil)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestBuiltinConverters(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterDefaults(r))
	ctx := context.Background()
	inv := fakeInvocation{}

	v, err := r.Convert(ctx, NewStringView("2h15m"), inv, typeset.Duration, nil)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour+15*time.Minute, v)

	v, err = r.Convert(ctx, NewStringView("yes"), inv, typeset.Bool, nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = r.Convert(ctx, NewStringView("3.5"), inv, typeset.Float, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	v, err = r.Convert(ctx, NewStringView("<@!123456>"), inv, typeset.Snowflake, nil)
	require.NoError(t, err)
	assert.Equal(t, "123456", v)
}

func TestParseSnowflake(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"123456789", "123456789", true},
		{"<@123>", "123", true},
		{"<@!123>", "123", true},
		{"<@&42>", "42", true},
		{"<#99>", "99", true},
		{"abc", "", false},
		{"<@abc>", "", false},
		{"<>", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSnowflake(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
