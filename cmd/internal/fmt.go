package internal

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"

	"github.com/thomas-touhey/lscl/render"
)

// FmtCommand returns the fmt CLI command.
func FmtCommand() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "Rewrite configurations in canonical form",
		ArgsUsage: "FILE...",
		Description: `Parses each file and renders it back with two-space indentation,
one attribute per line and multi-line arrays and hashes. Comments are not kept.

Example:
  lscl fmt -w pipeline.conf`,
		Flags: append(EscapeFlags(),
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Write the result back to the file instead of stdout",
			},
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "Only list files whose formatting differs",
			},
		),
		Action: runFmt,
	}
}

func runFmt(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no input files")
	}
	opts, err := EscapeOptions(c)
	if err != nil {
		return err
	}

	var errs *multierror.Error
	for _, filename := range c.Args().Slice() {
		src, content, err := ParseFile(filename, opts)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		out, err := render.Render(content, opts)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", filename, err))
			continue
		}

		switch {
		case c.Bool("list"):
			if out != src {
				fmt.Fprintln(c.App.Writer, filename)
			}
		case c.Bool("write"):
			if out == src {
				Log.WithField("file", filename).Debug("already formatted")
				continue
			}
			if err := os.WriteFile(filename, []byte(out), 0o644); err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			Log.WithField("file", filename).Info("formatted")
		default:
			fmt.Fprint(c.App.Writer, out)
		}
	}
	return errs.ErrorOrNil()
}
