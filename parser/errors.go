package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// LexError is returned when the input cannot be split into tokens:
// unterminated strings, invalid escape sequences and illegal characters.
type LexError struct {
	Pos lexer.Position
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// ParseError is returned on grammar violations. Renderers also use it to
// report malformed trees, in which case Pos is the zero value.
type ParseError struct {
	Pos      lexer.Position
	Expected []string
	Found    string
	Msg      string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Pos.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", e.Pos.Line, e.Pos.Column)
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
		if len(e.Expected) == 0 {
			return b.String()
		}
		b.WriteString(": ")
	}
	if len(e.Expected) > 0 {
		b.WriteString("expected ")
		b.WriteString(joinAlternatives(e.Expected))
		b.WriteString(", found ")
		b.WriteString(e.Found)
	}
	return b.String()
}

func joinAlternatives(alts []string) string {
	switch len(alts) {
	case 0:
		return ""
	case 1:
		return alts[0]
	}
	return strings.Join(alts[:len(alts)-1], ", ") + " or " + alts[len(alts)-1]
}

// Malformed reports a tree that cannot be serialized.
func Malformed(format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

func unexpected(tok Token, expected ...string) *ParseError {
	return &ParseError{Pos: tok.Pos, Expected: expected, Found: tok.describe()}
}
