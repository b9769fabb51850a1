package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCommandHistoryBounded(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.LogCommand("g1", "c1", "u1", "alice", "ping"))
	}

	history, err := s.CommandHistory("g1")
	require.NoError(t, err)
	assert.Len(t, history, commandHistoryLimit)
	assert.Equal(t, "ping", history[0].Command)
	assert.Equal(t, "alice", history[0].Username)
}

func TestHistoryIsolatedPerGuild(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.LogCommand("g1", "c1", "u1", "alice", "ping"))

	history, err := s.CommandHistory("g2")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGroupToggling(t *testing.T) {
	s := newTestStorage(t)

	disabled, err := s.IsGroupDisabled("g1", "play")
	require.NoError(t, err)
	assert.False(t, disabled)

	require.NoError(t, s.DisableGroup("g1", "play"))
	// Disabling twice is a no-op, not a duplicate entry.
	require.NoError(t, s.DisableGroup("g1", "play"))

	disabled, err = s.IsGroupDisabled("g1", "play")
	require.NoError(t, err)
	assert.True(t, disabled)

	// Other guilds and other groups are unaffected.
	disabled, err = s.IsGroupDisabled("g2", "play")
	require.NoError(t, err)
	assert.False(t, disabled)
	disabled, err = s.IsGroupDisabled("g1", "mod")
	require.NoError(t, err)
	assert.False(t, disabled)

	require.NoError(t, s.EnableGroup("g1", "play"))
	disabled, err = s.IsGroupDisabled("g1", "play")
	require.NoError(t, err)
	assert.False(t, disabled)
}
