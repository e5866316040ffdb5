package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/thomas-touhey/lscl/ast"
	"github.com/thomas-touhey/lscl/escape"
)

// TokenKind classifies tokens.
type TokenKind int

const (
	EOF TokenKind = iota
	StringLit
	Bareword
	Number
	Operator
	Punct
	Keyword
	Selector
	FieldRef
	Pattern
)

var kindNames = [...]string{
	EOF:       "end of input",
	StringLit: "string",
	Bareword:  "bareword",
	Number:    "number",
	Operator:  "operator",
	Punct:     "punctuation",
	Keyword:   "keyword",
	Selector:  "selector",
	FieldRef:  "field reference",
	Pattern:   "pattern",
}

func (k TokenKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a lexical token. Raw is the source text; Value is the decoded
// payload: the unescaped body of a string or pattern, the bracket content of
// a selector, the inside of a %{...} reference, or Raw for everything else.
type Token struct {
	Kind  TokenKind
	Raw   string
	Value string
	Num   ast.Number
	Pos   lexer.Position
}

func (t Token) is(kind TokenKind, raw string) bool {
	return t.Kind == kind && t.Raw == raw
}

func (t Token) describe() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case Operator, Punct, Keyword:
		return "'" + t.Raw + "'"
	}
	raw := t.Raw
	if len(raw) > 30 {
		raw = raw[:27] + "..."
	}
	return fmt.Sprintf("%s %s", t.Kind, strconv.Quote(raw))
}

var keywords = map[string]bool{
	"and": true, "or": true, "xor": true, "nand": true, "not": true,
	"in": true, "if": true, "elsif": true, "else": true,
}

// IsKeyword reports whether word lexes as a keyword rather than a bareword.
func IsKeyword(word string) bool {
	return keywords[word]
}

var definition = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Selector", Pattern: `\[[^\[\],\s"'][^\[\],]*\]`},
	{Name: "FieldRef", Pattern: `%\{[^}]*\}`},
	{Name: "String", Pattern: `"(?:\\[\s\S]|[^"\\])*"|'(?:\\[\s\S]|[^'\\])*'`},
	{Name: "Unterminated", Pattern: `["']`},
	{Name: "Pattern", Pattern: `/(?:\\[\s\S]|[^/\\])*/`},
	{Name: "Operator", Pattern: `=>|==|!=|<=|>=|=~|!~|<|>|!`},
	{Name: "Punct", Pattern: `[{}\[\](),]`},
	{Name: "Word", Pattern: `[A-Za-z0-9_.+\-]+`},
})

var symbols = definition.Symbols()

var (
	wordPattern   = regexp.MustCompile(`^[A-Za-z0-9_.+\-]+$`)
	numberPattern = regexp.MustCompile(`^[-+]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?$`)
)

// IsBareword reports whether word lexes as a single bareword token.
func IsBareword(word string) bool {
	return wordPattern.MatchString(word) && !keywords[word] && !numberPattern.MatchString(word)
}

// Tokenize splits text into tokens, skipping whitespace and comments. The
// returned slice always ends with an EOF token.
func Tokenize(text string, opts escape.Options) ([]Token, error) {
	return tokenize(text, opts, lexer.Position{Offset: 0, Line: 1, Column: 1})
}

func tokenize(text string, opts escape.Options, base lexer.Position) ([]Token, error) {
	lex, err := definition.LexString("", text)
	if err != nil {
		return nil, fmt.Errorf("starting lexer: %w", err)
	}

	var tokens []Token
	for {
		t, err := lex.Next()
		if err != nil {
			return nil, lexFailure(text, err, base)
		}
		pos := shift(base, t.Pos)
		if t.EOF() {
			tokens = append(tokens, Token{Kind: EOF, Pos: pos})
			return tokens, nil
		}

		tok := Token{Raw: t.Value, Value: t.Value, Pos: pos}
		switch t.Type {
		case symbols["Comment"], symbols["Whitespace"]:
			continue
		case symbols["Unterminated"]:
			return nil, &LexError{Pos: pos, Msg: "unterminated string"}
		case symbols["Selector"]:
			tok.Kind = Selector
			tok.Value = t.Value[1 : len(t.Value)-1]
		case symbols["FieldRef"]:
			tok.Kind = FieldRef
			tok.Value = t.Value[2 : len(t.Value)-1]
		case symbols["String"]:
			tok.Kind = StringLit
			body := t.Value[1 : len(t.Value)-1]
			v, at, err := escape.Unquote(body, opts.SupportEscapes)
			if err != nil {
				return nil, &LexError{Pos: advance(pos, t.Value[:1+at]), Msg: err.Error()}
			}
			tok.Value = v
		case symbols["Pattern"]:
			tok.Kind = Pattern
			tok.Value = unescapePattern(t.Value[1 : len(t.Value)-1])
		case symbols["Operator"]:
			tok.Kind = Operator
		case symbols["Punct"]:
			tok.Kind = Punct
		case symbols["Word"]:
			if err := classifyWord(&tok); err != nil {
				return nil, err
			}
		}
		tokens = append(tokens, tok)
	}
}

func classifyWord(tok *Token) error {
	switch {
	case keywords[tok.Raw]:
		tok.Kind = Keyword
	case numberPattern.MatchString(tok.Raw):
		tok.Kind = Number
		raw := strings.TrimPrefix(tok.Raw, "+")
		if strings.ContainsAny(raw, ".eE") {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return &LexError{Pos: tok.Pos, Msg: fmt.Sprintf("number %s out of range", tok.Raw)}
			}
			tok.Num = ast.Float(f)
		} else {
			i, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return &LexError{Pos: tok.Pos, Msg: fmt.Sprintf("number %s out of range", tok.Raw)}
			}
			tok.Num = ast.Int(i)
		}
	default:
		tok.Kind = Bareword
	}
	return nil
}

func lexFailure(text string, err error, base lexer.Position) error {
	var perr interface {
		Position() lexer.Position
	}
	if !errors.As(err, &perr) {
		return &LexError{Pos: base, Msg: err.Error()}
	}
	pos := perr.Position()
	msg := "illegal character"
	if pos.Offset >= 0 && pos.Offset < len(text) {
		msg = fmt.Sprintf("illegal character %q", text[pos.Offset])
		if strings.HasPrefix(text[pos.Offset:], "%{") {
			msg = "unterminated field reference"
		}
	}
	return &LexError{Pos: shift(base, pos), Msg: msg}
}

// shift translates a position relative to a sub-input starting at base.
func shift(base, p lexer.Position) lexer.Position {
	out := lexer.Position{Offset: base.Offset + p.Offset, Line: base.Line + p.Line - 1, Column: p.Column}
	if p.Line == 1 {
		out.Column = base.Column + p.Column - 1
	}
	return out
}

// advance moves p past text.
func advance(p lexer.Position, text string) lexer.Position {
	p.Offset += len(text)
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		p.Line += strings.Count(text, "\n")
		p.Column = len(text) - i
		return p
	}
	p.Column += len(text)
	return p
}

func unescapePattern(body string) string {
	if !strings.Contains(body, `\/`) {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			if body[i+1] != '/' {
				b.WriteByte('\\')
			}
			b.WriteByte(body[i+1])
			i++
			continue
		}
		b.WriteByte(body[i])
	}
	return b.String()
}
