package internal

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"time"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/thomas-touhey/lscl/escape"
	"github.com/thomas-touhey/lscl/parser"
	"github.com/thomas-touhey/lscl/render"
)

// CorpusCommand returns the corpus CLI command.
func CorpusCommand() *cli.Command {
	return &cli.Command{
		Name:      "corpus",
		Usage:     "Check that every configuration under a directory round-trips",
		ArgsUsage: "DIR...",
		Description: `Walks each directory for files matching --include, parses them, renders
them back and parses the result again. Files that fail to parse, whose tree
changes or whose rendering is not stable are listed, followed by timings.`,
		Flags: append(EscapeFlags(),
			&cli.StringFlag{
				Name:  "include",
				Usage: "Glob matched against paths relative to DIR",
				Value: "**.conf",
			},
		),
		Action: runCorpus,
	}
}

// CorpusResult summarizes a corpus walk. Parse and Render add up the time
// spent on each file.
type CorpusResult struct {
	Files  int
	Failed []string
	Parse  time.Duration
	Render time.Duration
}

type corpusFile struct {
	parse  time.Duration
	render time.Duration
	err    error
}

// ValidateCorpus round-trips every file under dir whose slash-separated
// relative path matches the glob pattern, several files at a time. Per-file
// failures are collected in the result; only walk errors are returned.
func ValidateCorpus(ctx context.Context, dir, pattern string, opts escape.Options) (CorpusResult, error) {
	match, err := glob.Compile(pattern, '/')
	if err != nil {
		return CorpusResult{}, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if match.Match(filepath.ToSlash(rel)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return CorpusResult{}, err
	}

	files := make([]corpusFile, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			files[i].err = files[i].roundTrip(path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CorpusResult{}, err
	}

	res := CorpusResult{Files: len(paths)}
	for i, f := range files {
		res.Parse += f.parse
		res.Render += f.render
		if f.err != nil {
			Log.WithField("file", paths[i]).WithError(f.err).Warn("round trip failed")
			res.Failed = append(res.Failed, paths[i])
		}
	}
	return res, nil
}

func (f *corpusFile) roundTrip(path string, opts escape.Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p := parser.New(opts)

	start := time.Now()
	tree, err := p.Parse(string(data))
	f.parse = time.Since(start)
	if err != nil {
		return err
	}

	start = time.Now()
	out, err := render.Render(tree, opts)
	f.render = time.Since(start)
	if err != nil {
		return err
	}

	again, err := p.Parse(out)
	if err != nil {
		return fmt.Errorf("rendered text does not parse: %w", err)
	}
	if !reflect.DeepEqual(tree, again) {
		return fmt.Errorf("tree changed after rendering")
	}
	if out2, err := render.Render(again, opts); err != nil || out2 != out {
		return fmt.Errorf("rendering is not stable")
	}
	return nil
}

func runCorpus(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no input directories")
	}
	opts, err := EscapeOptions(c)
	if err != nil {
		return err
	}

	var errs *multierror.Error
	for _, dir := range c.Args().Slice() {
		res, err := ValidateCorpus(c.Context, dir, c.String("include"), opts)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("walking %s: %w", dir, err))
			continue
		}

		if len(res.Failed) > 0 {
			fmt.Fprintf(c.App.Writer, "\nFiles that do not round-trip:\n")
			for _, path := range res.Failed {
				fmt.Fprintf(c.App.Writer, "  %s\n", path)
			}
			errs = multierror.Append(errs, fmt.Errorf("%s: %d of %d files failed", dir, len(res.Failed), res.Files))
		}
		fmt.Fprintf(c.App.Writer, "%s: %d files, parse %v, render %v\n", dir, res.Files, res.Parse, res.Render)
	}
	return errs.ErrorOrNil()
}
