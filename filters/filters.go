// Package filters extracts the ordered, branch-aware list of filter plugin
// invocations from a parsed pipeline, and renders such lists back to LSCL.
//
// Conditions are carried through unevaluated; only their structure matters.
package filters

import (
	"fmt"
	"strings"

	"github.com/thomas-touhey/lscl/ast"
	"github.com/thomas-touhey/lscl/escape"
	"github.com/thomas-touhey/lscl/parser"
	"github.com/thomas-touhey/lscl/render"
)

// Node is a Filter or a Branching.
type Node interface {
	filterNode()
}

// Filters is an ordered sequence of filter invocations and branchings, in
// execution order.
type Filters []Node

// Filter is one plugin invocation, such as `mutate { ... }`. Label is the
// plugin `id` when it is set to a string.
type Filter struct {
	Name   string
	Label  string
	Config ast.Hash
}

func (Filter) filterNode() {}

// Branching is an if / else if / else chain over filters. Only the last
// branch may have a nil Condition.
type Branching struct {
	Branches []Branch
}

func (Branching) filterNode() {}

// Branch is one arm of a Branching.
type Branch struct {
	Condition ast.Condition
	Body      Filters
}

// ExtractionError reports a node that has no place in the filter model. Path
// locates it by block names and branch numbers, since trees carry no source
// positions.
type ExtractionError struct {
	Path []string
	Msg  string
}

func (e *ExtractionError) Error() string {
	if len(e.Path) == 0 {
		return e.Msg
	}
	return strings.Join(e.Path, " > ") + ": " + e.Msg
}

// Parse parses text, locates its filter content and extracts it.
func Parse(text string, eopts escape.Options, opts Options) (Filters, error) {
	content, err := parser.New(eopts).Parse(text)
	if err != nil {
		return nil, err
	}
	section := FindSection(content, opts)
	return Extract(section, opts)
}

// Render serializes filters as top-level plugin blocks and conditionals,
// without an enclosing section block.
func Render(f Filters, eopts escape.Options) (string, error) {
	content, err := ToContent(f)
	if err != nil {
		return "", err
	}
	return render.Render(content, eopts)
}

// ToContent rebuilds the block and conditional tree that f was extracted
// from. Config entries become attributes in their stored order.
func ToContent(f Filters) (ast.Content, error) {
	content := ast.Content{}
	for _, node := range f {
		switch n := node.(type) {
		case Filter:
			block, err := filterBlock(n)
			if err != nil {
				return nil, err
			}
			content = append(content, block)
		case Branching:
			cond := ast.Conditional{Branches: make([]ast.Branch, 0, len(n.Branches))}
			for _, br := range n.Branches {
				body, err := ToContent(br.Body)
				if err != nil {
					return nil, err
				}
				cond.Branches = append(cond.Branches, ast.Branch{Condition: br.Condition, Body: body})
			}
			content = append(content, cond)
		default:
			return nil, parser.Malformed("unsupported filter node %T", node)
		}
	}
	return content, nil
}

// filterBlock rejects filters that would read back differently: a plugin
// named like the section block, or a label out of step with a string id.
func filterBlock(f Filter) (ast.Block, error) {
	if f.Name == DefaultSection {
		return ast.Block{}, parser.Malformed("filter %s: plugin name collides with the %s section", f.Name, DefaultSection)
	}
	id, ok := f.Config.Get(labelKey)
	s, isString := id.(ast.String)
	switch {
	case f.Label != "" && (!ok || !isString || s.Value != f.Label):
		return ast.Block{}, parser.Malformed("filter %s: label %q does not match its %s setting", f.Name, f.Label, labelKey)
	case f.Label == "" && isString:
		return ast.Block{}, parser.Malformed("filter %s: label \"\" does not match its %s setting %q", f.Name, labelKey, s.Value)
	}
	body := make(ast.Content, 0, len(f.Config.Entries))
	for _, e := range f.Config.Entries {
		body = append(body, ast.Attribute{Name: ast.String{Value: e.Key}, Value: e.Value})
	}
	return ast.Block{Name: f.Name, Body: body}, nil
}

// referenceKey is the config key of an attribute named by a field reference.
func referenceKey(ref ast.FieldReference) string {
	if len(ref.Path) == 1 {
		return "%{" + ref.Path[0] + "}"
	}
	return "%{[" + strings.Join(ref.Path, "][") + "]}"
}

func branchName(i int) string {
	return fmt.Sprintf("branch %d", i+1)
}
