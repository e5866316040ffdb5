// Package parser provides an LSCL (Logstash configuration language) parser.
//
// Tokens come from a participle lexer; the grammar itself is a recursive
// descent over a shared cursor, with precedence climbing for conditions.
package parser

import (
	"fmt"
	"os"

	"github.com/thomas-touhey/lscl/ast"
	"github.com/thomas-touhey/lscl/escape"
)

// DefaultMaxDepth bounds the nesting of blocks, values and conditions.
const DefaultMaxDepth = 128

// Parser parses LSCL text. A Parser holds no per-call state and may be
// shared between goroutines once configured.
type Parser struct {
	opts     escape.Options
	maxDepth int
}

// New creates a new LSCL parser.
func New(opts escape.Options) *Parser {
	return &Parser{opts: opts, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth configures the maximum nesting depth.
func (p *Parser) WithMaxDepth(n int) *Parser {
	p.maxDepth = n
	return p
}

// Options returns the escaping configuration the parser was built with.
func (p *Parser) Options() escape.Options {
	return p.opts
}

// Parse parses a whole configuration into its top-level content.
func (p *Parser) Parse(input string) (ast.Content, error) {
	c, err := p.cursor(input)
	if err != nil {
		return nil, err
	}
	content, err := c.parseContent(true)
	if err != nil {
		return nil, err
	}
	return content, nil
}

// ParseFile parses a configuration file.
func (p *Parser) ParseFile(filename string) (ast.Content, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return p.Parse(string(content))
}

// ParseValue parses a single attribute value, such as `[1, "a"]`.
func (p *Parser) ParseValue(input string) (ast.Value, error) {
	c, err := p.cursor(input)
	if err != nil {
		return nil, err
	}
	v, err := c.parseValue()
	if err != nil {
		return nil, err
	}
	if err := c.expectEOF(); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseCondition parses a single condition expression, such as
// `[type] == "apache" and [status] >= 500`.
func (p *Parser) ParseCondition(input string) (ast.Condition, error) {
	c, err := p.cursor(input)
	if err != nil {
		return nil, err
	}
	cond, err := c.parseCondition()
	if err != nil {
		return nil, err
	}
	if err := c.expectEOF(); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) cursor(input string) (*cursor, error) {
	tokens, err := Tokenize(input, p.opts)
	if err != nil {
		return nil, err
	}
	return &cursor{tokens: tokens, opts: p.opts, maxDepth: p.maxDepth}, nil
}

// cursor is the position shared by every grammar rule of one parse call.
type cursor struct {
	tokens   []Token
	pos      int
	opts     escape.Options
	depth    int
	maxDepth int
}

func (c *cursor) peek() Token {
	return c.tokens[c.pos]
}

func (c *cursor) peekAt(n int) Token {
	if c.pos+n >= len(c.tokens) {
		return c.tokens[len(c.tokens)-1]
	}
	return c.tokens[c.pos+n]
}

func (c *cursor) next() Token {
	tok := c.tokens[c.pos]
	if tok.Kind != EOF {
		c.pos++
	}
	return tok
}

func (c *cursor) expect(kind TokenKind, raw string) (Token, error) {
	tok := c.next()
	if !tok.is(kind, raw) {
		return tok, unexpected(tok, "'"+raw+"'")
	}
	return tok, nil
}

func (c *cursor) expectEOF() error {
	if tok := c.peek(); tok.Kind != EOF {
		return unexpected(tok, "end of input")
	}
	return nil
}

func (c *cursor) enter() error {
	c.depth++
	if c.maxDepth > 0 && c.depth > c.maxDepth {
		tok := c.peek()
		return &ParseError{Pos: tok.Pos, Msg: fmt.Sprintf("maximum nesting depth %d exceeded", c.maxDepth)}
	}
	return nil
}

func (c *cursor) leave() {
	c.depth--
}

// parseContent parses blocks, attributes and conditionals until the closing
// brace, or until the end of input at top level. The closing brace is not
// consumed.
func (c *cursor) parseContent(top bool) (ast.Content, error) {
	content := ast.Content{}
	for {
		tok := c.peek()
		switch {
		case top && tok.Kind == EOF:
			return content, nil
		case top && tok.is(Punct, "}"):
			return nil, unexpected(tok, "block name", "attribute name", "'if'", "end of input")
		case !top && tok.is(Punct, "}"):
			return content, nil
		case tok.Kind == EOF:
			return nil, unexpected(tok, "'}'")
		case tok.is(Keyword, "if"):
			cond, err := c.parseConditional()
			if err != nil {
				return nil, err
			}
			content = append(content, cond)
			continue
		}

		node, err := c.parseNamed()
		if err != nil {
			return nil, err
		}
		content = append(content, node)
	}
}

// parseNamed parses `name { ... }` or `name => value`.
func (c *cursor) parseNamed() (ast.Node, error) {
	nameTok := c.next()
	var name ast.Key
	switch nameTok.Kind {
	case Bareword, Number:
		name = ast.String{Value: nameTok.Raw}
	case Keyword:
		if nameTok.Raw == "else" || nameTok.Raw == "elsif" {
			return nil, &ParseError{Pos: nameTok.Pos, Msg: fmt.Sprintf("'%s' without a preceding 'if'", nameTok.Raw)}
		}
		name = ast.String{Value: nameTok.Raw}
	case StringLit:
		name = ast.String{Value: nameTok.Value}
	case FieldRef:
		ref, err := c.fieldReference(nameTok)
		if err != nil {
			return nil, err
		}
		name = ref
	default:
		return nil, unexpected(nameTok, "block name", "attribute name", "'if'")
	}

	op := c.next()
	switch {
	case op.is(Punct, "{"):
		s, ok := name.(ast.String)
		if !ok {
			return nil, unexpected(op, "'=>'")
		}
		body, err := c.parseBody()
		if err != nil {
			return nil, err
		}
		return ast.Block{Name: s.Value, Body: body}, nil
	case op.is(Operator, "=>"):
		v, err := c.parseValue()
		if err != nil {
			return nil, err
		}
		return ast.Attribute{Name: name, Value: v}, nil
	}
	return nil, unexpected(op, "'{'", "'=>'")
}

// parseBody parses the content after an already consumed opening brace, and
// the closing brace.
func (c *cursor) parseBody() (ast.Content, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	body, err := c.parseContent(false)
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(Punct, "}"); err != nil {
		return nil, err
	}
	return body, nil
}

// parseConditional parses if / elsif / else if / else chains.
func (c *cursor) parseConditional() (ast.Conditional, error) {
	c.next() // if
	first, err := c.parseBranch()
	if err != nil {
		return ast.Conditional{}, err
	}
	cond := ast.Conditional{Branches: []ast.Branch{first}}

	for {
		tok := c.peek()
		switch {
		case tok.is(Keyword, "elsif"):
			c.next()
		case tok.is(Keyword, "else") && c.peekAt(1).is(Keyword, "if"):
			c.next()
			c.next()
		case tok.is(Keyword, "else"):
			c.next()
			if _, err := c.expect(Punct, "{"); err != nil {
				return ast.Conditional{}, err
			}
			body, err := c.parseBody()
			if err != nil {
				return ast.Conditional{}, err
			}
			cond.Branches = append(cond.Branches, ast.Branch{Body: body})
			return cond, nil
		default:
			return cond, nil
		}

		branch, err := c.parseBranch()
		if err != nil {
			return ast.Conditional{}, err
		}
		cond.Branches = append(cond.Branches, branch)
	}
}

func (c *cursor) parseBranch() (ast.Branch, error) {
	expr, err := c.parseCondition()
	if err != nil {
		return ast.Branch{}, err
	}
	open := c.next()
	if !open.is(Punct, "{") {
		return ast.Branch{}, unexpected(open, "'{'", "'and'", "'or'", "'xor'", "'nand'")
	}
	body, err := c.parseBody()
	if err != nil {
		return ast.Branch{}, err
	}
	return ast.Branch{Condition: expr, Body: body}, nil
}
