package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/panbanda/stepdown/internal/progress"
	"github.com/panbanda/stepdown/internal/rewrite"
	"github.com/panbanda/stepdown/internal/scanner"
	"github.com/panbanda/stepdown/internal/service/sorting"
	"github.com/panbanda/stepdown/pkg/config"
	"github.com/urfave/cli/v2"
)

func sortCmd() *cli.Command {
	return &cli.Command{
		Name:      "sort",
		Usage:     "Reorder methods in place (default command)",
		ArgsUsage: "[path...]",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   "Report files that would change without writing them",
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "Like --dry-run, but exit non-zero when a file is out of order",
			},
			&cli.BoolFlag{
				Name:  "changed",
				Usage: "Only sort files modified in the git worktree",
			},
			&cli.StringFlag{
				Name:  "since",
				Usage: "With --changed, sort files changed since this revision instead",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel workers (0 = 2x CPU count)",
			},
		}, sorterFlags()...),
		Action: runSortCmd,
	}
}

func runSortCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applySorterFlags(c, cfg)
	if c.IsSet("workers") {
		cfg.Sorter.Workers = c.Int("workers")
	}

	cacheStore, err := openCache(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	logger := newLogger(c, cfg)
	svc, err := sorting.New(sorting.WithConfig(cfg), sorting.WithCache(cacheStore), sorting.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := sortTargets(ctx, c, cfg, svc)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(c.App.ErrWriter, color.YellowString("No Java files found"))
		return nil
	}

	mode := rewrite.ModeWrite
	if c.Bool("dry-run") || c.Bool("check") {
		mode = rewrite.ModeCheck
	}

	tracker := progress.NewTracker("Sorting...", len(files), c.App.ErrWriter)
	summary, errs := svc.Run(ctx, files, sorting.RunOptions{Mode: mode, OnProgress: tracker.Tick})
	tracker.FinishSuccess()

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if verbose(c, cfg) && !formatter.Format().Structured() {
		if err := formatter.Output(summary.Table("", true)); err != nil {
			return err
		}
		fmt.Fprintln(formatter.Writer(), summary.Line())
	} else if err := formatter.Output(summary); err != nil {
		return err
	}

	if errs != nil {
		for _, e := range errs.Errors {
			logger.Warn("file not sorted", "path", e.Path, "error", e.Err)
		}
		return errs
	}
	if c.Bool("check") && !summary.Clean() {
		return errOutOfOrder
	}
	return nil
}

// sortTargets lists the files a sort run covers: the scanned paths, or the
// Java files git reports as changed.
func sortTargets(ctx context.Context, c *cli.Context, cfg *config.Config, svc *sorting.Service) ([]string, error) {
	scan := scanner.NewScanner(cfg)
	if !c.Bool("changed") {
		return scan.ScanPaths(getPaths(c))
	}

	root, err := filepath.Abs(getPaths(c)[0])
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	changed, err := svc.ChangedFiles(ctx, root, c.String("since"))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, path := range changed {
		ok, err := scan.ScanFile(path)
		if err != nil {
			continue
		}
		if ok && isWithin(path, root) {
			files = append(files, path)
		}
	}
	return files, nil
}

func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && !strings.HasPrefix(rel, "..")
}
