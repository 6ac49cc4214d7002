package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/panbanda/stepdown/internal/output"
	"github.com/panbanda/stepdown/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a stepdown configuration file against its schema.

Examples:
  stepdown config validate                    # Validates default config locations
  stepdown -c stepdown.toml config validate   # Validates specific file`,
				Action: runConfigValidate,
			},
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: runConfigShow,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the configuration file",
				Action: runConfigSchema,
			},
		},
	}
}

func runConfigValidate(c *cli.Context) error {
	_, source, err := config.Resolve(c.String("config"))
	if err != nil {
		fmt.Fprintln(c.App.Writer, color.RedString("Configuration validation failed:"))
		fmt.Fprintf(c.App.Writer, "  - %s\n", err)
		return err
	}

	if source != "" {
		fmt.Fprintln(c.App.Writer, color.GreenString("Configuration valid: %s", source))
	} else {
		fmt.Fprintln(c.App.Writer, color.YellowString("No config file found. Default configuration is valid."))
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	cfg, source, err := config.Resolve(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("format") {
		out, err := output.Encode(cfg, output.ParseFormat(c.String("format")))
		if err != nil {
			return err
		}
		_, err = c.App.Writer.Write(out)
		return err
	}

	if source != "" {
		fmt.Fprintf(c.App.Writer, "# Configuration from: %s\n\n", source)
	} else {
		fmt.Fprintln(c.App.Writer, "# Default configuration (no config file found)")
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = c.App.Writer.Write(content)
	return err
}

func runConfigSchema(c *cli.Context) error {
	_, err := c.App.Writer.Write(config.Schema())
	return err
}
