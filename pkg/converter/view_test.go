package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(view *StringView) []string {
	var out []string
	for {
		w, ok := view.NextWord()
		if !ok {
			return out
		}
		out = append(out, w)
	}
}

func TestNextWord(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "one two three", []string{"one", "two", "three"}},
		{"extra whitespace", "  one \t two\n", []string{"one", "two"}},
		{"double quotes", `say "hello there" now`, []string{"say", "hello there", "now"}},
		{"single quotes", `say 'hello there'`, []string{"say", "hello there"}},
		{"escaped quote", `"she said \"hi\""`, []string{`she said "hi"`}},
		{"escaped backslash", `"a\\b"`, []string{`a\b`}},
		{"unterminated quote", `say "oops`, []string{"say", `"oops`}},
		{"empty", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, words(NewStringView(tt.input)))
		})
	}
}

func TestForkCommit(t *testing.T) {
	view := NewStringView("alpha beta gamma")

	fork := view.Fork()
	w, ok := fork.NextWord()
	require.True(t, ok)
	require.Equal(t, "alpha", w)

	// The fork advanced, the parent did not.
	assert.Equal(t, 0, view.Index())

	view.Commit(fork)
	w, _ = view.NextWord()
	assert.Equal(t, "beta", w)

	// A fork of a different buffer never commits.
	stranger := NewStringView("other text")
	stranger.NextWord()
	before := view.Index()
	view.Commit(stranger)
	assert.Equal(t, before, view.Index())
}

func TestExhaustedAndRemaining(t *testing.T) {
	view := NewStringView("tail of message")
	view.NextWord()
	assert.False(t, view.Exhausted())
	assert.Equal(t, " of message", view.Remaining())
	assert.True(t, view.Exhausted())

	assert.True(t, NewStringView("   \t").Exhausted())
}
