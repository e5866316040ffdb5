// Package check runs static checks over parsed LSCL configurations.
//
// Nothing is evaluated: checks only look at the shape of conditions.
package check

import (
	"fmt"
	"strings"

	regexp "github.com/wasilibs/go-re2"

	"github.com/thomas-touhey/lscl/ast"
)

// Issue is a pattern that could not be compiled. Path locates the
// conditional by block names and branch numbers.
type Issue struct {
	Path    []string
	Pattern string
	Err     error
}

func (i Issue) String() string {
	loc := strings.Join(i.Path, " > ")
	if loc == "" {
		loc = "(top level)"
	}
	return fmt.Sprintf("%s: pattern /%s/: %v", loc, i.Pattern, i.Err)
}

// Patterns compiles the right operand of every =~ and !~ comparison, and
// every other regexp literal, and reports those RE2 rejects. Logstash
// evaluates patterns with Ruby's engine, so a reported pattern may still be
// valid there; common Ruby-only syntax is translated before compiling.
func Patterns(content ast.Content) []Issue {
	w := &walker{}
	w.content(content, nil)
	return w.issues
}

// Compile compiles a condition pattern with RE2.
func Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(translate(pattern))
}

type walker struct {
	issues []Issue
}

func (w *walker) content(content ast.Content, path []string) {
	for _, node := range content {
		switch n := node.(type) {
		case ast.Block:
			w.content(n.Body, within(path, n.Name))
		case ast.Conditional:
			for i, br := range n.Branches {
				branch := within(path, fmt.Sprintf("branch %d", i+1))
				if br.Condition != nil {
					w.condition(br.Condition, branch)
				}
				w.content(br.Body, branch)
			}
		}
	}
}

func (w *walker) condition(c ast.Condition, path []string) {
	switch n := c.(type) {
	case ast.Comparison:
		w.condition(n.Left, path)
		if lit, ok := n.Right.(ast.Literal); ok && (n.Op == ast.Match || n.Op == ast.NotMatch) {
			if s, ok := lit.Value.(ast.String); ok {
				w.pattern(s.Value, path)
				return
			}
		}
		w.condition(n.Right, path)
	case ast.BooleanOp:
		w.condition(n.Left, path)
		w.condition(n.Right, path)
	case ast.Not:
		w.condition(n.Operand, path)
	case ast.Group:
		w.condition(n.Inner, path)
	case ast.MethodCall:
		for _, arg := range n.Args {
			w.condition(arg, path)
		}
	case ast.Regexp:
		w.pattern(n.Pattern, path)
	}
}

func (w *walker) pattern(pattern string, path []string) {
	if _, err := Compile(pattern); err != nil {
		w.issues = append(w.issues, Issue{Path: path, Pattern: pattern, Err: err})
	}
}

func within(path []string, elem string) []string {
	return append(path[:len(path):len(path)], elem)
}

// translate rewrites Ruby regexp syntax that RE2 spells differently:
// {,N} becomes {0,N}, and the \h / \H hex digit classes are expanded.
func translate(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\\' && i+1 < len(pattern) {
			switch next := pattern[i+1]; {
			case next == 'h' && inClass:
				b.WriteString("0-9A-Fa-f")
			case next == 'h':
				b.WriteString("[0-9A-Fa-f]")
			case next == 'H' && !inClass:
				b.WriteString("[^0-9A-Fa-f]")
			default:
				b.WriteByte(c)
				b.WriteByte(next)
			}
			i++
			continue
		}
		switch {
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
			// A leading ] (after an optional ^) is a literal.
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				b.WriteByte(']')
				i++
			}
			continue
		case c == ']' && inClass:
			inClass = false
		case c == '{' && !inClass && i+1 < len(pattern) && pattern[i+1] == ',':
			b.WriteString("{0")
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
