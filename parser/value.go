package parser

import (
	"strings"

	"github.com/thomas-touhey/lscl/ast"
	"github.com/thomas-touhey/lscl/escape"
)

// parseValue parses a string, number, array, hash or field reference.
func (c *cursor) parseValue() (ast.Value, error) {
	tok := c.next()
	switch tok.Kind {
	case StringLit:
		return ast.String{Value: tok.Value}, nil
	case Bareword, Keyword:
		return ast.String{Value: tok.Raw}, nil
	case Number:
		return tok.Num, nil
	case FieldRef:
		return c.fieldReference(tok)
	case Selector:
		return c.selectorArray(tok)
	case Punct:
		switch tok.Raw {
		case "[":
			return c.parseArray()
		case "{":
			return c.parseHash()
		}
	}
	return nil, unexpected(tok, "value")
}

// parseArray parses the items after an opening bracket. A trailing comma
// is accepted.
func (c *cursor) parseArray() (ast.Value, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	arr := ast.Array{Items: []ast.Value{}}
	for {
		if c.peek().is(Punct, "]") {
			c.next()
			return arr, nil
		}
		v, err := c.parseValue()
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, v)

		tok := c.next()
		switch {
		case tok.is(Punct, "]"):
			return arr, nil
		case tok.is(Punct, ","):
			continue
		}
		return nil, unexpected(tok, "','", "']'")
	}
}

// parseHash parses `key => value` entries after an opening brace. Entries
// may be separated by commas or whitespace alone; a repeated key replaces
// the earlier value in place.
func (c *cursor) parseHash() (ast.Value, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	h := ast.Hash{Entries: []ast.HashEntry{}}
	for {
		tok := c.next()
		var key string
		switch tok.Kind {
		case Punct:
			if tok.Raw == "}" {
				return h, nil
			}
			return nil, unexpected(tok, "hash key", "'}'")
		case StringLit:
			key = tok.Value
		case Bareword, Keyword, Number:
			key = tok.Raw
		default:
			return nil, unexpected(tok, "hash key", "'}'")
		}

		if _, err := c.expect(Operator, "=>"); err != nil {
			return nil, err
		}
		v, err := c.parseValue()
		if err != nil {
			return nil, err
		}
		h.Set(key, v)

		if c.peek().is(Punct, ",") {
			c.next()
		}
	}
}

// selectorArray turns a `[x]` token met in value context into the
// one-element array it stands for, lexing its content again.
func (c *cursor) selectorArray(tok Token) (ast.Value, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	start := advance(tok.Pos, "[")
	tokens, err := tokenize(tok.Value, c.opts, start)
	if err != nil {
		return nil, err
	}
	sub := &cursor{tokens: tokens, opts: c.opts, depth: c.depth, maxDepth: c.maxDepth}
	v, err := sub.parseValue()
	if err != nil {
		return nil, err
	}
	if end := sub.peek(); end.Kind != EOF {
		return nil, unexpected(end, "','", "']'")
	}
	return ast.Array{Items: []ast.Value{v}}, nil
}

// fieldReference decodes a %{name} or %{[a][b]} token.
func (c *cursor) fieldReference(tok Token) (ast.FieldReference, error) {
	path, err := splitPath(tok.Value, c.opts.FieldReferenceStyle)
	if err != nil {
		return ast.FieldReference{}, &ParseError{Pos: tok.Pos, Msg: "invalid field reference " + tok.Raw + ": " + err.Error()}
	}
	return ast.FieldReference{Path: path}, nil
}

// selectorPath collects consecutive selector tokens into a field reference.
func (c *cursor) selectorPath() (ast.FieldReference, error) {
	var path []string
	for c.peek().Kind == Selector {
		tok := c.next()
		seg, err := escape.DecodeSegment(tok.Value, c.opts.FieldReferenceStyle)
		if err != nil {
			return ast.FieldReference{}, &ParseError{Pos: tok.Pos, Msg: err.Error()}
		}
		path = append(path, seg)
	}
	return ast.FieldReference{Path: path}, nil
}

func splitPath(inner string, style escape.Style) ([]string, error) {
	if inner == "" {
		return nil, errEmptyReference
	}
	if inner[0] != '[' {
		if strings.ContainsAny(inner, "[]") {
			return nil, errBadBrackets
		}
		seg, err := escape.DecodeSegment(inner, style)
		if err != nil {
			return nil, err
		}
		return []string{seg}, nil
	}

	var path []string
	for rest := inner; rest != ""; {
		if rest[0] != '[' {
			return nil, errBadBrackets
		}
		end := strings.IndexByte(rest, ']')
		if end <= 1 || strings.IndexByte(rest[1:end], '[') >= 0 {
			return nil, errBadBrackets
		}
		seg, err := escape.DecodeSegment(rest[1:end], style)
		if err != nil {
			return nil, err
		}
		path = append(path, seg)
		rest = rest[end+1:]
	}
	return path, nil
}

type pathError string

func (e pathError) Error() string { return string(e) }

const (
	errEmptyReference = pathError("empty path")
	errBadBrackets    = pathError("unbalanced or empty brackets")
)
