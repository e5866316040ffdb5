package internal

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/thomas-touhey/lscl/ast"
	"github.com/thomas-touhey/lscl/escape"
	"github.com/thomas-touhey/lscl/filters"
	"github.com/thomas-touhey/lscl/render"
)

// FiltersCommand returns the filters CLI command.
func FiltersCommand() *cli.Command {
	return &cli.Command{
		Name:      "filters",
		Usage:     "Extract the filter plugins a pipeline runs",
		ArgsUsage: "FILE...",
		Description: `Locates the filter section of each file and prints its plugins in
execution order, keeping the conditionals around them.

Formats:
  lscl     plugin blocks and conditionals, without the section block
  yaml     the filter model, conditions rendered as LSCL
  summary  plugin invocation counts`,
		Flags: append(append(EscapeFlags(), filterFlags()...),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: lscl, yaml or summary",
				Value:   "lscl",
			},
		),
		Action: runFilters,
	}
}

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "section",
			Usage: "Name of the section holding filters",
			Value: filters.DefaultSection,
		},
		&cli.StringFlag{
			Name:  "scope",
			Usage: "Where to look for filters: auto, root or section",
			Value: filters.ScopeAuto.String(),
		},
		&cli.StringFlag{
			Name:  "duplicates",
			Usage: "Repeated plugin settings: last-wins, reject or merge",
			Value: filters.DuplicateLastWins.String(),
		},
	}
}

func filterOptions(c *cli.Context) (filters.Options, error) {
	scope, err := filters.ParseScope(c.String("scope"))
	if err != nil {
		return filters.Options{}, err
	}
	dup, err := filters.ParseDuplicatePolicy(c.String("duplicates"))
	if err != nil {
		return filters.Options{}, err
	}
	return filters.Options{Section: c.String("section"), Scope: scope, Duplicates: dup}, nil
}

func runFilters(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no input files")
	}
	opts, err := EscapeOptions(c)
	if err != nil {
		return err
	}
	fopts, err := filterOptions(c)
	if err != nil {
		return err
	}
	format := c.String("format")
	if format != "lscl" && format != "yaml" && format != "summary" {
		return fmt.Errorf("invalid format: %s (must be lscl, yaml or summary)", format)
	}

	counts := map[string]int{}
	var errs *multierror.Error
	for _, filename := range c.Args().Slice() {
		_, content, err := ParseFile(filename, opts)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		f, err := filters.Extract(filters.FindSection(content, fopts), fopts)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", filename, err))
			continue
		}

		switch format {
		case "summary":
			PluginCounts(f, counts)
		case "yaml":
			err = WriteYAML(c.App.Writer, f, opts)
		default:
			var out string
			if out, err = filters.Render(f, opts); err == nil {
				_, err = io.WriteString(c.App.Writer, out)
			}
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", filename, err))
		}
	}

	if format == "summary" {
		fmt.Fprintf(c.App.Writer, "%d filter invocations\n", SumValues(counts))
		for _, name := range SortByCount(counts) {
			fmt.Fprintf(c.App.Writer, "  - %s: %d\n", name, counts[name])
		}
	}
	return errs.ErrorOrNil()
}

// WriteYAML writes f as a YAML document. Mappings keep their LSCL order.
func WriteYAML(w io.Writer, f filters.Filters, opts escape.Options) error {
	node, err := filtersNode(f, opts)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

func filtersNode(f filters.Filters, opts escape.Options) (*yaml.Node, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, node := range f {
		m := &yaml.Node{Kind: yaml.MappingNode}
		switch n := node.(type) {
		case filters.Filter:
			config, err := valueNode(n.Config, opts)
			if err != nil {
				return nil, err
			}
			addPair(m, "filter", scalar(n.Name))
			if n.Label != "" {
				addPair(m, "label", scalar(n.Label))
			}
			addPair(m, "config", config)
		case filters.Branching:
			branches := &yaml.Node{Kind: yaml.SequenceNode}
			for _, br := range n.Branches {
				bm := &yaml.Node{Kind: yaml.MappingNode}
				if br.Condition != nil {
					cond, err := render.Condition(br.Condition, opts)
					if err != nil {
						return nil, err
					}
					addPair(bm, "if", scalar(cond))
				} else {
					addPair(bm, "else", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
				}
				body, err := filtersNode(br.Body, opts)
				if err != nil {
					return nil, err
				}
				addPair(bm, "filters", body)
				branches.Content = append(branches.Content, bm)
			}
			addPair(m, "branches", branches)
		}
		seq.Content = append(seq.Content, m)
	}
	return seq, nil
}

func valueNode(v ast.Value, opts escape.Options) (*yaml.Node, error) {
	switch n := v.(type) {
	case ast.String:
		return scalar(n.Value), nil
	case ast.Number:
		tag := "!!int"
		if n.IsFloat {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: n.String()}, nil
	case ast.Array:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range n.Items {
			child, err := valueNode(item, opts)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		return seq, nil
	case ast.Hash:
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, e := range n.Entries {
			child, err := valueNode(e.Value, opts)
			if err != nil {
				return nil, err
			}
			addPair(m, e.Key, child)
		}
		return m, nil
	}
	text, err := render.Value(v, opts)
	if err != nil {
		return nil, err
	}
	return scalar(text), nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}
