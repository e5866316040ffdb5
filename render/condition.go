package render

import (
	"strings"

	"github.com/thomas-touhey/lscl/ast"
	"github.com/thomas-touhey/lscl/parser"
)

func (p *printer) condition(c ast.Condition, depth int) error {
	switch n := c.(type) {
	case ast.BooleanOp:
		if err := p.operand(n.Left, n.Op, false, depth); err != nil {
			return err
		}
		p.b.WriteString(" " + string(n.Op) + " ")
		return p.operand(n.Right, n.Op, true, depth)
	case ast.Not:
		p.b.WriteByte('!')
		return p.primary(n.Operand, depth)
	case ast.Comparison:
		return p.comparison(n, depth)
	}
	return p.primary(c, depth)
}

// operand writes one side of a logical operation, parenthesized when the
// grammar would otherwise associate it differently.
func (p *printer) operand(c ast.Condition, parent ast.BoolOp, right bool, depth int) error {
	child, ok := c.(ast.BooleanOp)
	if !ok {
		return p.condition(c, depth)
	}
	prec, parentPrec := child.Op.Precedence(), parent.Precedence()
	if prec > parentPrec || (prec == parentPrec && !right) {
		return p.condition(c, depth)
	}
	return p.parenthesized(c, depth)
}

func (p *printer) comparison(c ast.Comparison, depth int) error {
	if err := p.primary(c.Left, depth); err != nil {
		return err
	}
	p.b.WriteString(" " + string(c.Op) + " ")

	if c.Op != ast.Match && c.Op != ast.NotMatch {
		return p.primary(c.Right, depth)
	}
	switch r := c.Right.(type) {
	case ast.Regexp:
		return p.pattern(r.Pattern)
	case ast.Literal:
		if s, ok := r.Value.(ast.String); ok {
			return p.quoted(s.Value)
		}
	}
	return parser.Malformed("right operand of %s must be a pattern or a string, got %T", c.Op, c.Right)
}

// primary writes an operand that binds tighter than any operator.
func (p *printer) primary(c ast.Condition, depth int) error {
	switch n := c.(type) {
	case ast.Group:
		return p.parenthesized(n.Inner, depth)
	case ast.FieldReference:
		return p.selector(n)
	case ast.Literal:
		return p.literal(n.Value, depth)
	case ast.Regexp:
		return p.pattern(n.Pattern)
	case ast.MethodCall:
		return p.call(n, depth)
	case ast.BooleanOp, ast.Not, ast.Comparison:
		return p.parenthesized(c, depth)
	case nil:
		return parser.Malformed("missing condition operand")
	}
	return parser.Malformed("unsupported condition %T", c)
}

func (p *printer) parenthesized(c ast.Condition, depth int) error {
	p.b.WriteByte('(')
	if err := p.condition(c, depth); err != nil {
		return err
	}
	p.b.WriteByte(')')
	return nil
}

// literal writes condition literals. Strings are always quoted, since a
// bareword is not a condition operand.
func (p *printer) literal(v ast.Value, depth int) error {
	switch n := v.(type) {
	case ast.String:
		return p.quoted(n.Value)
	case ast.Number:
		return p.number(n)
	case ast.Array:
		return p.value(n, depth)
	case ast.FieldReference:
		return p.selector(n)
	case nil:
		return parser.Malformed("missing literal value")
	}
	return parser.Malformed("%T literals cannot appear in conditions", v)
}

func (p *printer) call(c ast.MethodCall, depth int) error {
	if !parser.IsBareword(c.Name) {
		return parser.Malformed("invalid method name %q", c.Name)
	}
	p.b.WriteString(c.Name + "(")
	for i, arg := range c.Args {
		if i > 0 {
			p.b.WriteString(", ")
		}
		if err := p.primary(arg, depth); err != nil {
			return err
		}
	}
	p.b.WriteByte(')')
	return nil
}

// pattern writes /pattern/, escaping slashes not already escaped.
func (p *printer) pattern(pat string) error {
	var b strings.Builder
	b.Grow(len(pat) + 2)
	b.WriteByte('/')
	for i := 0; i < len(pat); i++ {
		switch pat[i] {
		case '\\':
			if i+1 >= len(pat) {
				return parser.Malformed("pattern %q ends with a backslash", pat)
			}
			b.WriteByte('\\')
			b.WriteByte(pat[i+1])
			i++
		case '/':
			b.WriteString(`\/`)
		default:
			b.WriteByte(pat[i])
		}
	}
	b.WriteByte('/')
	p.b.WriteString(b.String())
	return nil
}
