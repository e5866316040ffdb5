package internal

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Log is the command line logger. Library packages never log.
var Log = logrus.New()

// VerboseFlag switches Log to debug level.
var VerboseFlag = &cli.BoolFlag{
	Name:    "verbose",
	Aliases: []string{"v"},
	Usage:   "Enable verbose output",
}

// SetupLogging configures Log from the global flags.
func SetupLogging(c *cli.Context) error {
	Log.SetOutput(os.Stderr)
	Log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if c.Bool(VerboseFlag.Name) {
		Log.SetLevel(logrus.DebugLevel)
	}
	return nil
}
