package converter

import "strings"

// StringView is a cursor over raw message text. Converters read words through
// a fork and commit only on success, so a failed conversion never consumes
// input and the caller can retry with another converter.
type StringView struct {
	buf   string
	index int
}

// NewStringView returns a view positioned at the start of s.
func NewStringView(s string) *StringView {
	return &StringView{buf: s}
}

// Fork returns an independent cursor at the same position.
func (v *StringView) Fork() *StringView {
	return &StringView{buf: v.buf, index: v.index}
}

// Commit advances v to the position of a fork previously taken from it.
func (v *StringView) Commit(fork *StringView) {
	if fork.buf != v.buf {
		return
	}
	v.index = fork.index
}

// Index returns the current cursor position.
func (v *StringView) Index() int { return v.index }

// SkipWhitespace advances past any leading whitespace.
func (v *StringView) SkipWhitespace() {
	for v.index < len(v.buf) && isSpace(v.buf[v.index]) {
		v.index++
	}
}

// Exhausted reports whether only whitespace remains.
func (v *StringView) Exhausted() bool {
	for i := v.index; i < len(v.buf); i++ {
		if !isSpace(v.buf[i]) {
			return false
		}
	}
	return true
}

// Remaining returns everything from the cursor to the end of the buffer and
// consumes it.
func (v *StringView) Remaining() string {
	rest := v.buf[v.index:]
	v.index = len(v.buf)
	return rest
}

// NextWord consumes and returns the next word. Words are whitespace separated;
// a word opened with a single or double quote runs to the matching close quote
// and may contain whitespace and backslash-escaped quotes. Returns false when
// the view is exhausted.
func (v *StringView) NextWord() (string, bool) {
	v.SkipWhitespace()
	if v.index >= len(v.buf) {
		return "", false
	}

	open := v.buf[v.index]
	if open == '"' || open == '\'' {
		return v.quotedWord(open)
	}

	start := v.index
	for v.index < len(v.buf) && !isSpace(v.buf[v.index]) {
		v.index++
	}
	return v.buf[start:v.index], true
}

func (v *StringView) quotedWord(quote byte) (string, bool) {
	var b strings.Builder
	i := v.index + 1
	for i < len(v.buf) {
		c := v.buf[i]
		if c == '\\' && i+1 < len(v.buf) {
			next := v.buf[i+1]
			if next == quote || next == '\\' {
				b.WriteByte(next)
				i += 2
				continue
			}
		}
		if c == quote {
			v.index = i + 1
			return b.String(), true
		}
		b.WriteByte(c)
		i++
	}
	// Unterminated quote: treat the opening quote as a literal word character.
	start := v.index
	for v.index < len(v.buf) && !isSpace(v.buf[v.index]) {
		v.index++
	}
	return v.buf[start:v.index], true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
