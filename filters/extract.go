package filters

import (
	"fmt"

	"github.com/thomas-touhey/lscl/ast"
)

// FindSection returns the content filters are extracted from, according to
// opts.Scope. Quoted and bareword section names are equivalent.
func FindSection(content ast.Content, opts Options) ast.Content {
	if opts.Scope == ScopeRoot {
		return content
	}
	section, found := collectSection(content, opts.section())
	if !found && opts.Scope == ScopeAuto {
		return content
	}
	return section
}

// collectSection concatenates the bodies of blocks named name, recursing
// through conditionals. Conditionals left with no section content are
// dropped; found reports whether any section block exists, even empty.
func collectSection(content ast.Content, name string) (section ast.Content, found bool) {
	section = ast.Content{}
	for _, node := range content {
		switch n := node.(type) {
		case ast.Block:
			if n.Name == name {
				found = true
				section = append(section, n.Body...)
			}
		case ast.Conditional:
			cond := ast.Conditional{Branches: make([]ast.Branch, len(n.Branches))}
			nonEmpty := false
			for i, br := range n.Branches {
				body, ok := collectSection(br.Body, name)
				found = found || ok
				nonEmpty = nonEmpty || len(body) > 0
				cond.Branches[i] = ast.Branch{Condition: br.Condition, Body: body}
			}
			if nonEmpty {
				section = append(section, cond)
			}
		}
	}
	return section, found
}

// Extract turns section content into filters. Each block is a plugin
// invocation configured by its attributes; each conditional becomes a
// Branching. Attributes directly in content are rejected.
func Extract(content ast.Content, opts Options) (Filters, error) {
	e := &extractor{opts: opts}
	return e.filters(content, nil)
}

type extractor struct {
	opts Options
}

func (e *extractor) filters(content ast.Content, path []string) (Filters, error) {
	out := Filters{}
	for _, node := range content {
		switch n := node.(type) {
		case ast.Block:
			if e.opts.Scope != ScopeRoot && n.Name == e.opts.section() {
				return nil, &ExtractionError{Path: within(path, n.Name), Msg: "section block nested in filter content"}
			}
			f, err := e.filter(n, within(path, n.Name))
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		case ast.Conditional:
			b := Branching{Branches: make([]Branch, 0, len(n.Branches))}
			for i, br := range n.Branches {
				body, err := e.filters(br.Body, within(path, branchName(i)))
				if err != nil {
					return nil, err
				}
				b.Branches = append(b.Branches, Branch{Condition: br.Condition, Body: body})
			}
			out = append(out, b)
		case ast.Attribute:
			return nil, &ExtractionError{
				Path: within(path, attributeName(n.Name)),
				Msg:  "attribute outside of a plugin block",
			}
		default:
			return nil, &ExtractionError{Path: path, Msg: fmt.Sprintf("unsupported node %T", node)}
		}
	}
	return out, nil
}

func (e *extractor) filter(b ast.Block, path []string) (Filter, error) {
	config, err := e.config(b.Body, path)
	if err != nil {
		return Filter{}, err
	}
	f := Filter{Name: b.Name, Config: config}
	if id, ok := config.Get(labelKey); ok {
		if s, ok := id.(ast.String); ok {
			f.Label = s.Value
		}
	}
	return f, nil
}

// config builds the settings hash of a plugin block. Nested blocks, such as
// a codec, become hash-valued settings.
func (e *extractor) config(body ast.Content, path []string) (ast.Hash, error) {
	h := ast.Hash{Entries: []ast.HashEntry{}}
	for _, node := range body {
		var key string
		var value ast.Value
		switch n := node.(type) {
		case ast.Attribute:
			key, value = attributeName(n.Name), n.Value
		case ast.Block:
			nested, err := e.config(n.Body, within(path, n.Name))
			if err != nil {
				return ast.Hash{}, err
			}
			key, value = n.Name, nested
		case ast.Conditional:
			return ast.Hash{}, &ExtractionError{Path: path, Msg: "conditional inside a plugin block"}
		default:
			return ast.Hash{}, &ExtractionError{Path: path, Msg: fmt.Sprintf("unsupported node %T", node)}
		}
		if err := e.set(&h, key, value, path); err != nil {
			return ast.Hash{}, err
		}
	}
	return h, nil
}

func (e *extractor) set(h *ast.Hash, key string, value ast.Value, path []string) error {
	prev, exists := h.Get(key)
	if !exists {
		h.Set(key, value)
		return nil
	}
	switch e.opts.Duplicates {
	case DuplicateReject:
		return &ExtractionError{Path: within(path, key), Msg: "setting defined more than once"}
	case DuplicateMerge:
		h.Set(key, merge(prev, value))
	default:
		h.Set(key, value)
	}
	return nil
}

func merge(prev, next ast.Value) ast.Value {
	switch p := prev.(type) {
	case ast.Array:
		items := append([]ast.Value{}, p.Items...)
		if n, ok := next.(ast.Array); ok {
			return ast.Array{Items: append(items, n.Items...)}
		}
		return ast.Array{Items: append(items, next)}
	case ast.Hash:
		if n, ok := next.(ast.Hash); ok {
			out := ast.Hash{Entries: append([]ast.HashEntry{}, p.Entries...)}
			for _, entry := range n.Entries {
				out.Set(entry.Key, entry.Value)
			}
			return out
		}
	}
	return ast.Array{Items: []ast.Value{prev, next}}
}

func attributeName(k ast.Key) string {
	switch n := k.(type) {
	case ast.String:
		return n.Value
	case ast.FieldReference:
		return referenceKey(n)
	}
	return fmt.Sprintf("%v", k)
}

// within returns path extended by elem, never sharing path's backing array.
func within(path []string, elem string) []string {
	return append(path[:len(path):len(path)], elem)
}
