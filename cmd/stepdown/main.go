package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/panbanda/stepdown/internal/cache"
	"github.com/panbanda/stepdown/internal/output"
	"github.com/panbanda/stepdown/pkg/config"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// errOutOfOrder fails a --check run.
var errOutOfOrder = errors.New("files are not in stepdown order")

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "stepdown",
		Usage:   "Order Java methods so callers come before callees",
		Version: version,
		Description: `Stepdown reorders the members of Java classes so the code reads top-down:
every method is followed by the methods it calls, in the order it calls them.

Without a command, stepdown sorts the given paths in place.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{config.EnvVar},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, yaml, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		DefaultCommand: "sort",
		Commands: []*cli.Command{
			sortCmd(),
			orderCmd(),
			graphCmd(),
			watchCmd(),
			initCmd(),
			configCmd(),
			cacheCmd(),
			mcpCmd(),
		},
	}
}

// loadConfig resolves --config, or a config file in the working directory.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, source, err := config.Resolve(c.String("config"))
	if err != nil {
		return nil, err
	}
	if source != "" && verbose(c, cfg) {
		fmt.Fprintf(os.Stderr, "Using config %s\n", source)
	}
	return cfg, nil
}

func verbose(c *cli.Context, cfg *config.Config) bool {
	return c.Bool("verbose") || (cfg != nil && cfg.Output.Verbose)
}

// newLogger logs warnings to stderr, everything with --verbose.
func newLogger(c *cli.Context, cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	if verbose(c, cfg) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
}

// newFormatter honors --format and --output over the output section.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := cfg.Output.Format
	if c.IsSet("format") {
		format = c.String("format")
	}
	colored := cfg.Output.Color && !color.NoColor
	if c.String("output") == "" && c.App.Writer != os.Stdout {
		return output.NewWriterFormatter(output.ParseFormat(format), c.App.Writer, false), nil
	}
	return output.NewFormatter(output.ParseFormat(format), c.String("output"), colored)
}

func openCache(c *cli.Context, cfg *config.Config) (*cache.Cache, error) {
	enabled := cfg.Cache.Enabled && !c.Bool("no-cache")
	return cache.New(cfg.Cache.Dir, cfg.Cache.TTL, enabled)
}
