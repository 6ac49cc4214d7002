package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/stepdown/internal/rewrite"
	"github.com/panbanda/stepdown/internal/service/sorting"
	"github.com/panbanda/stepdown/pkg/watch"
	"github.com/urfave/cli/v2"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch for file changes and sort them as they are saved",
		ArgsUsage: "[path]",
		Flags: append([]cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: 500 * time.Millisecond,
				Usage: "Wait this long after the last change before sorting",
			},
		}, sorterFlags()...),
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applySorterFlags(c, cfg)

	logger := newLogger(c, cfg)
	svc, err := sorting.New(sorting.WithConfig(cfg), sorting.WithLogger(logger))
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(getPaths(c)[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	watcher, err := watch.NewWatcher(absPath, cfg, c.Duration("debounce"),
		watch.WithOutput(c.App.Writer), watch.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	// Handle Ctrl+C
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher.SetCallback(func(changedPath string) {
		summary, errs := svc.Run(ctx, []string{changedPath}, sorting.RunOptions{Mode: rewrite.ModeWrite, Workers: 1})
		if errs != nil {
			fmt.Fprintln(c.App.Writer, color.RedString("Sort error: %v", errs))
			return
		}
		for _, f := range summary.Files {
			switch f.Status {
			case sorting.StatusReordered:
				// The rewrite triggers another event; settle it so it is not sorted again.
				if content, err := os.ReadFile(f.Path); err == nil {
					watcher.Settle(f.Path, content)
				}
				fmt.Fprintln(c.App.Writer, color.GreenString("Reordered %d methods in %s", f.Methods, filepath.Base(f.Path)))
			case sorting.StatusSkipped:
				fmt.Fprintln(c.App.Writer, color.YellowString("Skipped %s: %s", filepath.Base(f.Path), f.Reason))
			default:
				fmt.Fprintln(c.App.Writer, color.GreenString("%s already in stepdown order", filepath.Base(f.Path)))
			}
		}
	})

	return watcher.Start(ctx)
}
