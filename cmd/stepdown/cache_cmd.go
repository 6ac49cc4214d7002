package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the sort cache",
		Subcommands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Remove every cached verdict",
				Action: runCacheClear,
			},
		},
	}
}

func runCacheClear(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		fmt.Fprintln(c.App.Writer, color.YellowString("Cache is disabled"))
		return nil
	}
	store, err := openCache(c, cfg)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintln(c.App.Writer, color.GreenString("Cleared %s", cfg.Cache.Dir))
	return nil
}
