package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasSlashDescendant(t *testing.T) {
	textOnly := NewGroup("textish", "text commands")
	require.NoError(t, textOnly.Add(New("a", "a", noop, WithKind(KindTextOnly))))
	assert.False(t, textOnly.HasSlashDescendant())

	mixed := NewGroup("mixed", "mixed commands")
	require.NoError(t, mixed.Add(New("b", "b", noop, WithKind(KindTextOnly))))
	nested := NewGroup("nested", "nested")
	require.NoError(t, nested.Add(New("c", "c", noop)))
	require.NoError(t, mixed.Add(nested))
	assert.True(t, mixed.HasSlashDescendant())
}

func TestFullName(t *testing.T) {
	g := NewGroup("outer", "outer")
	inner := NewGroup("inner", "inner")
	leaf := New("leaf", "leaf", noop)
	require.NoError(t, inner.Add(leaf))
	require.NoError(t, g.Add(inner))

	assert.Equal(t, "outer inner leaf", leaf.FullName())
	assert.Equal(t, "outer", g.FullName())
}

func TestMustAddPanicsOnBrokenTree(t *testing.T) {
	g := NewGroup("g", "g")
	g.MustAdd(New("ok", "ok", noop))
	assert.Panics(t, func() { g.MustAdd(New("ok", "duplicate", noop)) })
}
