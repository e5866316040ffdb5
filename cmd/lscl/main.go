// Package main provides the lscl CLI for formatting, inspecting and checking
// Logstash pipeline configurations.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/thomas-touhey/lscl/cmd/internal"
)

func main() {
	app := &cli.App{
		Name:   "lscl",
		Usage:  "Format, inspect and check Logstash pipeline configurations",
		Flags:  []cli.Flag{internal.VerboseFlag},
		Before: internal.SetupLogging,
		Commands: []*cli.Command{
			internal.FmtCommand(),
			internal.FiltersCommand(),
			internal.CheckCommand(),
			internal.CorpusCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
