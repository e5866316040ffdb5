package internal

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/thomas-touhey/lscl/ast"
	"github.com/thomas-touhey/lscl/escape"
	"github.com/thomas-touhey/lscl/parser"
)

// EscapeFlags are shared by every command reading or writing LSCL.
func EscapeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "support-escapes",
			Aliases: []string{"e"},
			Usage:   "Decode and encode backslash escapes in strings (config.support_escapes)",
		},
		&cli.StringFlag{
			Name:  "field-reference-escape-style",
			Usage: "Field reference escape style: none, percent or ampersand",
			Value: "none",
		},
	}
}

// EscapeOptions reads the flags declared by EscapeFlags.
func EscapeOptions(c *cli.Context) (escape.Options, error) {
	style, err := escape.ParseStyle(c.String("field-reference-escape-style"))
	if err != nil {
		return escape.Options{}, err
	}
	return escape.Options{
		SupportEscapes:      c.Bool("support-escapes"),
		FieldReferenceStyle: style,
	}, nil
}

// ParseFile parses one configuration file, naming it in the error.
func ParseFile(filename string, opts escape.Options) (string, ast.Content, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", nil, err
	}
	content, err := parser.New(opts).Parse(string(data))
	if err != nil {
		return "", nil, fmt.Errorf("%s:%w", filename, err)
	}
	Log.WithField("file", filename).Debugf("parsed %d top-level nodes", len(content))
	return string(data), content, nil
}
