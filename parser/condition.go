package parser

import (
	"github.com/thomas-touhey/lscl/ast"
)

// Condition grammar, lowest to highest binding:
//
//	or | xor | nand
//	and
//	not / !        (binds to the following primary only)
//	== != < <= > >= =~ !~ in, not in   (non-chainable)
//	primary: literal, selector, %{ref}, /pattern/, call(...), ( condition )

var boolOps = map[string]ast.BoolOp{
	"and":  ast.And,
	"or":   ast.Or,
	"xor":  ast.Xor,
	"nand": ast.Nand,
}

var compareOps = map[string]ast.CompareOp{
	"==": ast.Eq,
	"!=": ast.NotEq,
	"<":  ast.Less,
	"<=": ast.LessEq,
	">":  ast.Greater,
	">=": ast.GreaterEq,
	"=~": ast.Match,
	"!~": ast.NotMatch,
}

func (c *cursor) parseCondition() (ast.Condition, error) {
	return c.parseLogical(1)
}

// parseLogical climbs binary logical operators whose precedence is at least
// minPrec. Operators of equal precedence associate to the left.
func (c *cursor) parseLogical(minPrec int) (ast.Condition, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	left, err := c.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := c.peek()
		op, ok := boolOps[tok.Raw]
		if tok.Kind != Keyword || !ok || op.Precedence() < minPrec {
			return left, nil
		}
		c.next()
		right, err := c.parseLogical(op.Precedence() + 1)
		if err != nil {
			return nil, err
		}
		left = ast.BooleanOp{Op: op, Left: left, Right: right}
	}
}

func (c *cursor) parseUnary() (ast.Condition, error) {
	tok := c.peek()
	if !tok.is(Operator, "!") && !tok.is(Keyword, "not") {
		return c.parseComparison()
	}
	c.next()
	operand, err := c.parsePrimary()
	if err != nil {
		return nil, err
	}
	return ast.Not{Operand: operand}, nil
}

func (c *cursor) parseComparison() (ast.Condition, error) {
	left, err := c.parsePrimary()
	if err != nil {
		return nil, err
	}
	op, ok := c.compareOp()
	if !ok {
		return left, nil
	}

	var right ast.Condition
	if op == ast.Match || op == ast.NotMatch {
		tok := c.next()
		switch tok.Kind {
		case Pattern:
			right = ast.Regexp{Pattern: tok.Value}
		case StringLit:
			right = ast.Literal{Value: ast.String{Value: tok.Value}}
		default:
			return nil, unexpected(tok, "pattern", "string")
		}
	} else {
		right, err = c.parsePrimary()
		if err != nil {
			return nil, err
		}
	}

	if tok := c.peek(); c.isCompareOp() {
		return nil, &ParseError{Pos: tok.Pos, Msg: "comparison operators cannot be chained"}
	}
	return ast.Comparison{Left: left, Op: op, Right: right}, nil
}

func (c *cursor) isCompareOp() bool {
	tok := c.peek()
	if tok.Kind == Operator {
		_, ok := compareOps[tok.Raw]
		return ok
	}
	return tok.is(Keyword, "in") || (tok.is(Keyword, "not") && c.peekAt(1).is(Keyword, "in"))
}

// compareOp consumes a comparison operator if one is next.
func (c *cursor) compareOp() (ast.CompareOp, bool) {
	if !c.isCompareOp() {
		return "", false
	}
	tok := c.next()
	switch tok.Raw {
	case "in":
		return ast.In, true
	case "not":
		c.next()
		return ast.NotIn, true
	}
	return compareOps[tok.Raw], true
}

func (c *cursor) parsePrimary() (ast.Condition, error) {
	tok := c.peek()
	switch tok.Kind {
	case Selector:
		return c.selectorPath()
	case FieldRef:
		c.next()
		return c.fieldReference(tok)
	case StringLit:
		c.next()
		return ast.Literal{Value: ast.String{Value: tok.Value}}, nil
	case Number:
		c.next()
		return ast.Literal{Value: tok.Num}, nil
	case Pattern:
		c.next()
		return ast.Regexp{Pattern: tok.Value}, nil
	case Bareword:
		if c.peekAt(1).is(Punct, "(") {
			return c.parseMethodCall()
		}
	case Punct:
		switch tok.Raw {
		case "(":
			return c.parseGroup()
		case "[":
			c.next()
			arr, err := c.parseArray()
			if err != nil {
				return nil, err
			}
			return ast.Literal{Value: arr}, nil
		}
	}
	return nil, unexpected(tok, "field reference", "string", "number", "array", "method call", "'('")
}

func (c *cursor) parseGroup() (ast.Condition, error) {
	c.next() // (
	inner, err := c.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(Punct, ")"); err != nil {
		return nil, err
	}
	return ast.Group{Inner: inner}, nil
}

func (c *cursor) parseMethodCall() (ast.Condition, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	name := c.next()
	c.next() // (
	call := ast.MethodCall{Name: name.Raw, Args: []ast.Condition{}}
	for {
		if c.peek().is(Punct, ")") {
			c.next()
			return call, nil
		}
		arg, err := c.parsePrimary()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		tok := c.next()
		switch {
		case tok.is(Punct, ")"):
			return call, nil
		case tok.is(Punct, ","):
			continue
		}
		return nil, unexpected(tok, "','", "')'")
	}
}
