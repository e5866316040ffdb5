// Package lscl parses and renders Logstash pipeline configurations, and
// extracts the filter plugins they run.
//
// The zero Options match an unconfigured Logstash instance: escapes in
// strings are not supported and field references are not escaped.
package lscl

import (
	"github.com/thomas-touhey/lscl/ast"
	"github.com/thomas-touhey/lscl/escape"
	"github.com/thomas-touhey/lscl/filters"
	"github.com/thomas-touhey/lscl/parser"
	"github.com/thomas-touhey/lscl/render"
)

// Options mirrors the config.support_escapes and
// config.field_reference.escape_style Logstash settings.
type Options = escape.Options

// Parse parses a whole configuration.
func Parse(text string, opts Options) (ast.Content, error) {
	return parser.New(opts).Parse(text)
}

// Render serializes content as canonical LSCL text.
func Render(content ast.Content, opts Options) (string, error) {
	return render.Render(content, opts)
}

// ParseFilters parses text and extracts the plugins of its filter sections,
// or of the whole document when it has none.
func ParseFilters(text string, opts Options) (filters.Filters, error) {
	return filters.Parse(text, opts, filters.Options{})
}

// RenderFilters serializes filters as top-level plugin blocks.
func RenderFilters(f filters.Filters, opts Options) (string, error) {
	return filters.Render(f, opts)
}
