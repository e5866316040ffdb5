// Package ast defines the Abstract Syntax Tree types for LSCL documents.
package ast

import (
	"math"
	"strconv"
)

// Value is the sum type of attribute values: String, Number, Array, Hash or
// FieldReference.
type Value interface {
	valueNode()
}

// Key is a value usable as an attribute name: String or FieldReference.
type Key interface {
	Value
	keyNode()
}

// String is a bareword or quoted string.
type String struct {
	Value string
}

func (String) valueNode() {}
func (String) keyNode()   {}

// Number is an integer or floating point literal.
type Number struct {
	Int     int64
	Float   float64
	IsFloat bool
}

func (Number) valueNode() {}

// Int returns an integer Number.
func Int(v int64) Number {
	return Number{Int: v}
}

// Float returns a floating point Number.
func Float(v float64) Number {
	return Number{Float: v, IsFloat: true}
}

// Float64 returns the number as a float64 regardless of its kind.
func (n Number) Float64() float64 {
	if n.IsFloat {
		return n.Float
	}
	return float64(n.Int)
}

// String returns the canonical text for n. Floats always carry a decimal
// point or exponent so that they lex back as floats.
func (n Number) String() string {
	if !n.IsFloat {
		return strconv.FormatInt(n.Int, 10)
	}
	s := strconv.FormatFloat(n.Float, 'g', -1, 64)
	if math.IsInf(n.Float, 0) || math.IsNaN(n.Float) {
		return s
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == 'e' {
			return s
		}
	}
	return s + ".0"
}

// Array is an ordered list of values.
type Array struct {
	Items []Value
}

func (Array) valueNode() {}

// HashEntry is one key => value pair of a Hash.
type HashEntry struct {
	Key   string
	Value Value
}

// Hash is an ordered mapping. Keys are unique.
type Hash struct {
	Entries []HashEntry
}

func (Hash) valueNode() {}

// Get returns the value stored under key.
func (h Hash) Get(key string) (Value, bool) {
	for _, e := range h.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key in place, or appends a new entry.
func (h *Hash) Set(key string, v Value) {
	for i := range h.Entries {
		if h.Entries[i].Key == key {
			h.Entries[i].Value = v
			return
		}
	}
	h.Entries = append(h.Entries, HashEntry{Key: key, Value: v})
}

// Keys returns the keys in insertion order.
func (h Hash) Keys() []string {
	keys := make([]string, len(h.Entries))
	for i, e := range h.Entries {
		keys[i] = e.Key
	}
	return keys
}

// FieldReference points at an event field, e.g. %{[a][b]} or [a][b] in a
// condition. Path holds the decoded segments.
type FieldReference struct {
	Path []string
}

func (FieldReference) valueNode()     {}
func (FieldReference) keyNode()       {}
func (FieldReference) conditionNode() {}

// Node is an element of a Content sequence: Block, Attribute or Conditional.
type Node interface {
	contentNode()
}

// Content is an ordered sequence of nodes. Order is execution order.
type Content []Node

// Block is a named, brace-delimited container, such as a pipeline section
// or a plugin.
type Block struct {
	Name string
	Body Content
}

func (Block) contentNode() {}

// Attribute is a `name => value` pair.
type Attribute struct {
	Name  Key
	Value Value
}

func (Attribute) contentNode() {}

// Conditional is an if / else if / else chain. Only the last branch may have
// a nil Condition.
type Conditional struct {
	Branches []Branch
}

func (Conditional) contentNode() {}

// Branch is one arm of a Conditional. A nil Condition marks the else arm.
type Branch struct {
	Condition Condition
	Body      Content
}
