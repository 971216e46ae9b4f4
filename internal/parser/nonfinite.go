package parser

import (
	"math"
	"strings"
)

// nonFiniteMarker prefixes the JSON string a bare NaN, Infinity or -Infinity
// literal is rewritten to, so encoding/json can tokenize it.
const nonFiniteMarker = "\x00fclayer:nonfinite:"

var nonFiniteLiterals = []struct {
	literal string
	value   float64
}{
	{literal: "-Infinity", value: math.Inf(-1)},
	{literal: "Infinity", value: math.Inf(1)},
	{literal: "NaN", value: math.NaN()},
}

// shift records that the rewritten text grew by delta bytes up to end.
type shift struct {
	end   int
	delta int
}

type shifts []shift

// original maps an offset in the rewritten text back to the source text.
func (s shifts) original(pos int) int {
	out := pos
	for _, sh := range s {
		if sh.end > pos {
			break
		}
		out -= sh.delta
	}
	return out
}

func hasNonFinite(s string) bool {
	return strings.Contains(s, "NaN") || strings.Contains(s, "Infinity")
}

// quoteNonFinite replaces NaN, Infinity and -Infinity outside of strings with
// marker strings. s must start at a JSON value for string tracking to hold.
func quoteNonFinite(s string) (string, shifts) {
	if !hasNonFinite(s) {
		return s, nil
	}

	var (
		b        strings.Builder
		moved    shifts
		inString bool
		escaped  bool
	)
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			i++
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			i++
			continue
		}
		if lit, ok := nonFiniteAt(s, i); ok {
			marker := `"\u0000fclayer:nonfinite:` + lit + `"`
			b.WriteString(marker)
			moved = append(moved, shift{end: b.Len(), delta: len(marker) - len(lit)})
			i += len(lit)
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), moved
}

func nonFiniteAt(s string, i int) (string, bool) {
	if i > 0 && isWordByte(s[i-1]) {
		return "", false
	}
	for _, nf := range nonFiniteLiterals {
		end := i + len(nf.literal)
		if strings.HasPrefix(s[i:], nf.literal) && (end == len(s) || !isWordByte(s[end])) {
			return nf.literal, true
		}
	}
	return "", false
}

func isWordByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// nonFiniteValue turns a marker string back into its float value.
func nonFiniteValue(s string) (float64, bool) {
	lit, ok := strings.CutPrefix(s, nonFiniteMarker)
	if !ok {
		return 0, false
	}
	for _, nf := range nonFiniteLiterals {
		if nf.literal == lit {
			return nf.value, true
		}
	}
	return 0, false
}
