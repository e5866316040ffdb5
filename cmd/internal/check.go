package internal

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"

	"github.com/thomas-touhey/lscl/check"
	"github.com/thomas-touhey/lscl/filters"
)

// CheckCommand returns the check CLI command.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Validate configurations without running them",
		ArgsUsage: "FILE...",
		Description: `Parses each file, extracts its filters and compiles every condition
pattern with RE2. Patterns using Ruby-only regexp features are reported even
though Logstash may accept them.`,
		Flags:  append(EscapeFlags(), filterFlags()...),
		Action: runCheck,
	}
}

func runCheck(c *cli.Context) error {
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

	var errs *multierror.Error
	for _, filename := range c.Args().Slice() {
		_, content, err := ParseFile(filename, opts)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if _, err := filters.Extract(filters.FindSection(content, fopts), fopts); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", filename, err))
		}
		for _, issue := range check.Patterns(content) {
			errs = multierror.Append(errs, fmt.Errorf("%s: %s", filename, issue))
		}
		Log.WithField("file", filename).Debug("checked")
	}
	return errs.ErrorOrNil()
}
