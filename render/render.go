// Package render serializes LSCL trees back into configuration text.
//
// Output is canonical: two spaces of indentation per level, one attribute per
// line, multi-line arrays and hashes. Text produced from a parsed tree parses
// back to an equal tree when the same escape.Options are used on both sides.
package render

import (
	"math"
	"regexp"
	"strings"

	"github.com/thomas-touhey/lscl/ast"
	"github.com/thomas-touhey/lscl/escape"
	"github.com/thomas-touhey/lscl/parser"
)

const indentUnit = "  "

// A selector element starting with one of these lexes as an array instead.
const selectorLeadExcluded = "\t\n\f\r \"'"

var barewordPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Render serializes content. Every node, including the last, ends with a
// newline.
func Render(content ast.Content, opts escape.Options) (string, error) {
	p := &printer{opts: opts}
	if err := p.content(content, 0); err != nil {
		return "", err
	}
	return p.b.String(), nil
}

// Value serializes a single attribute value, as it would appear after `=>`
// at the top level.
func Value(v ast.Value, opts escape.Options) (string, error) {
	p := &printer{opts: opts}
	if err := p.value(v, 0); err != nil {
		return "", err
	}
	return p.b.String(), nil
}

// Condition serializes a single condition expression.
func Condition(c ast.Condition, opts escape.Options) (string, error) {
	p := &printer{opts: opts}
	if err := p.condition(c, 0); err != nil {
		return "", err
	}
	return p.b.String(), nil
}

type printer struct {
	b    strings.Builder
	opts escape.Options
}

func (p *printer) indent(depth int) {
	for i := 0; i < depth; i++ {
		p.b.WriteString(indentUnit)
	}
}

func (p *printer) content(content ast.Content, depth int) error {
	for _, node := range content {
		p.indent(depth)
		switch n := node.(type) {
		case ast.Block:
			if err := p.word(n.Name); err != nil {
				return err
			}
			p.b.WriteByte(' ')
			if err := p.body(n.Body, depth); err != nil {
				return err
			}
		case ast.Attribute:
			if err := p.name(n.Name); err != nil {
				return err
			}
			p.b.WriteString(" => ")
			if err := p.value(n.Value, depth); err != nil {
				return err
			}
		case ast.Conditional:
			if err := p.conditional(n, depth); err != nil {
				return err
			}
		default:
			return parser.Malformed("unsupported content node %T", node)
		}
		p.b.WriteByte('\n')
	}
	return nil
}

// body writes `{}` or a braced block of content, without a trailing newline.
func (p *printer) body(content ast.Content, depth int) error {
	if len(content) == 0 {
		p.b.WriteString("{}")
		return nil
	}
	p.b.WriteString("{\n")
	if err := p.content(content, depth+1); err != nil {
		return err
	}
	p.indent(depth)
	p.b.WriteByte('}')
	return nil
}

func (p *printer) conditional(c ast.Conditional, depth int) error {
	if len(c.Branches) == 0 {
		return parser.Malformed("conditional without branches")
	}
	for i, br := range c.Branches {
		last := i == len(c.Branches)-1
		switch {
		case br.Condition == nil && i == 0:
			return parser.Malformed("first branch of a conditional has no condition")
		case br.Condition == nil && !last:
			return parser.Malformed("branch %d of %d has no condition but is not last", i+1, len(c.Branches))
		case i == 0:
			p.b.WriteString("if ")
		case br.Condition != nil:
			p.b.WriteString(" else if ")
		default:
			p.b.WriteString(" else ")
		}
		if br.Condition != nil {
			if err := p.condition(br.Condition, depth); err != nil {
				return err
			}
			p.b.WriteByte(' ')
		}
		if err := p.body(br.Body, depth); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) name(k ast.Key) error {
	switch n := k.(type) {
	case ast.String:
		return p.word(n.Value)
	case ast.FieldReference:
		return p.reference(n)
	}
	return parser.Malformed("unsupported attribute name %T", k)
}

// word writes s bare when it lexes back as the same bareword, quoted
// otherwise.
func (p *printer) word(s string) error {
	if isBareword(s) {
		p.b.WriteString(s)
		return nil
	}
	return p.quoted(s)
}

func isBareword(s string) bool {
	return barewordPattern.MatchString(s) && !parser.IsKeyword(s)
}

func (p *printer) quoted(s string) error {
	q, err := escape.Quote(s, p.opts.SupportEscapes)
	if err != nil {
		return parser.Malformed("%v", err)
	}
	p.b.WriteString(q)
	return nil
}

func (p *printer) value(v ast.Value, depth int) error {
	switch n := v.(type) {
	case ast.String:
		return p.word(n.Value)
	case ast.Number:
		return p.number(n)
	case ast.FieldReference:
		return p.reference(n)
	case ast.Array:
		if len(n.Items) == 0 {
			p.b.WriteString("[]")
			return nil
		}
		p.b.WriteString("[\n")
		for i, item := range n.Items {
			p.indent(depth + 1)
			if err := p.value(item, depth+1); err != nil {
				return err
			}
			if i < len(n.Items)-1 {
				p.b.WriteByte(',')
			}
			p.b.WriteByte('\n')
		}
		p.indent(depth)
		p.b.WriteByte(']')
		return nil
	case ast.Hash:
		if len(n.Entries) == 0 {
			p.b.WriteString("{}")
			return nil
		}
		p.b.WriteString("{\n")
		for _, e := range n.Entries {
			p.indent(depth + 1)
			if err := p.word(e.Key); err != nil {
				return err
			}
			p.b.WriteString(" => ")
			if err := p.value(e.Value, depth+1); err != nil {
				return err
			}
			p.b.WriteByte('\n')
		}
		p.indent(depth)
		p.b.WriteByte('}')
		return nil
	case nil:
		return parser.Malformed("missing value")
	}
	return parser.Malformed("unsupported value %T", v)
}

func (p *printer) number(n ast.Number) error {
	if n.IsFloat && (math.IsNaN(n.Float) || math.IsInf(n.Float, 0)) {
		return parser.Malformed("number %v has no LSCL representation", n.Float)
	}
	p.b.WriteString(n.String())
	return nil
}

// reference writes %{name} for single-segment paths and %{[a][b]} otherwise.
func (p *printer) reference(ref ast.FieldReference) error {
	if len(ref.Path) == 0 {
		return parser.Malformed("field reference with an empty path")
	}
	segs := make([]string, len(ref.Path))
	for i, seg := range ref.Path {
		enc, err := escape.EncodeSegment(seg, p.opts.FieldReferenceStyle)
		if err != nil {
			return parser.Malformed("%v", err)
		}
		if strings.ContainsAny(enc, "[]}") {
			return parser.Malformed("field reference segment %q cannot be rendered with escape style %s", seg, p.opts.FieldReferenceStyle)
		}
		segs[i] = enc
	}
	p.b.WriteString("%{")
	if len(segs) == 1 {
		p.b.WriteString(segs[0])
	} else {
		for _, seg := range segs {
			p.b.WriteString("[" + seg + "]")
		}
	}
	p.b.WriteByte('}')
	return nil
}

// selector writes the [a][b] form used in conditions, falling back to
// %{...} when a segment cannot sit inside a selector.
func (p *printer) selector(ref ast.FieldReference) error {
	if len(ref.Path) == 0 {
		return parser.Malformed("field reference with an empty path")
	}
	segs := make([]string, len(ref.Path))
	for i, seg := range ref.Path {
		enc, err := escape.EncodeSegment(seg, p.opts.FieldReferenceStyle)
		if err != nil {
			return parser.Malformed("%v", err)
		}
		if strings.ContainsAny(enc, "[],") || strings.IndexByte(selectorLeadExcluded, enc[0]) >= 0 {
			return p.reference(ref)
		}
		segs[i] = enc
	}
	for _, seg := range segs {
		p.b.WriteString("[" + seg + "]")
	}
	return nil
}
