package typeset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignableSpecialTypes(t *testing.T) {
	tests := []struct {
		name string
		a, b *Descriptor
		want bool
	}{
		{"never to never", Never(), Never(), true},
		{"never to string", Never(), String, false},
		{"string to never", String, Never(), false},
		{"never to void", Never(), Void(), false},
		{"never to dynamic", Never(), Dynamic(), false},
		{"string to void", String, Void(), true},
		{"function to void", NewFunction(nil, Void()), Void(), true},
		{"void to string", Void(), String, false},
		{"void to dynamic", Void(), Dynamic(), true},
		{"string to dynamic", String, Dynamic(), true},
		{"dynamic to string", Dynamic(), String, false},
		{"dynamic to dynamic", Dynamic(), Dynamic(), true},
		{"dynamic to void", Dynamic(), Void(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Assignable(tt.a, tt.b))
		})
	}
}

func TestAssignableInterfaces(t *testing.T) {
	assert.True(t, Assignable(String, String))
	assert.True(t, Assignable(String, Object))
	assert.False(t, Assignable(Object, String))
	assert.False(t, Assignable(String, Int))

	// Transitive supertypes: member -> user -> mentionable -> object.
	assert.True(t, Assignable(Member, User))
	assert.True(t, Assignable(Member, Mentionable))
	assert.True(t, Assignable(Member, Object))
	assert.False(t, Assignable(User, Member))
	assert.True(t, Assignable(Role, Mentionable))
	assert.False(t, Assignable(Channel, Mentionable))
}

func TestAssignableTypeArgs(t *testing.T) {
	listOf := func(arg *Descriptor) *Descriptor {
		return NewInterface("list", WithTypeArgs(arg), WithSupers(Object))
	}

	// Type arguments are covariant.
	assert.True(t, Assignable(listOf(Member), listOf(User)))
	assert.False(t, Assignable(listOf(User), listOf(Member)))
	assert.False(t, Assignable(listOf(String), listOf(Int)))

	// Same base name with different arities never matches.
	plain := NewInterface("list", WithSupers(Object))
	assert.False(t, Assignable(plain, listOf(String)))
}

func TestAssignableNullability(t *testing.T) {
	assert.True(t, Assignable(String, String.Nullable()))
	assert.False(t, Assignable(String.Nullable(), String))
	assert.True(t, Assignable(String.Nullable(), String.Nullable()))
	assert.True(t, Assignable(Member.Nullable(), User.Nullable()))
	assert.False(t, Assignable(Member.Nullable(), User))
}

func TestAssignableFunctions(t *testing.T) {
	userToVoid := NewFunction([]*Descriptor{User}, Void())
	memberToVoid := NewFunction([]*Descriptor{Member}, Void())

	// Parameters are contravariant: a handler of any user serves where a
	// handler of members is expected.
	assert.True(t, Assignable(userToVoid, memberToVoid))
	assert.False(t, Assignable(memberToVoid, userToVoid))

	// Returns are covariant.
	retMember := NewFunction(nil, Member)
	retUser := NewFunction(nil, User)
	assert.True(t, Assignable(retMember, retUser))
	assert.False(t, Assignable(retUser, retMember))

	// Arity must match.
	assert.False(t, Assignable(NewFunction(nil, Void()), userToVoid))

	// Functions satisfy only the universal interfaces.
	assert.True(t, Assignable(userToVoid, Object))
	assert.True(t, Assignable(userToVoid, AnyFunction))
	assert.False(t, Assignable(userToVoid, String))
	assert.False(t, Assignable(String, userToVoid))
}

func TestAssignableNilPanics(t *testing.T) {
	assert.Panics(t, func() { Assignable(nil, String) })
	assert.Panics(t, func() { Assignable(String, nil) })
}

func TestDescriptorKey(t *testing.T) {
	require.Equal(t, "string", String.Key())
	require.Equal(t, "string?", String.Nullable().Key())
	require.Equal(t, "fn(int)->void", NewFunction([]*Descriptor{Int}, Void()).Key())
	require.Equal(t, "list<string>?",
		NewInterface("list", WithTypeArgs(String)).Nullable().Key())

	// Structural identity: same shape, same node.
	a := NewInterface("list", WithTypeArgs(String), WithSupers(Object))
	b := NewInterface("list", WithTypeArgs(String), WithSupers(Object))
	assert.True(t, a.Equal(b))
}

func TestNullableIdempotent(t *testing.T) {
	n := String.Nullable()
	assert.Same(t, n, n.Nullable())
	assert.Same(t, Dynamic(), Dynamic().Nullable())
	assert.False(t, String.IsNullable(), "Nullable must copy, not mutate")
}
