package main

import (
	"errors"
	"fmt"

	"github.com/panbanda/stepdown/internal/output"
	"github.com/panbanda/stepdown/internal/service/sorting"
	"github.com/urfave/cli/v2"
)

func orderCmd() *cli.Command {
	return &cli.Command{
		Name:      "order",
		Usage:     "Show the computed method order of a file without changing it",
		ArgsUsage: "<file>",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "source",
				Usage: "Print the sorted source instead of the order table",
			},
		}, sorterFlags()...),
		Action: runOrderCmd,
	}
}

func runOrderCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("order takes exactly one file")
	}
	svc, formatter, err := planService(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	plan, err := svc.Plan(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	res, err := sorting.Order(plan)
	if err != nil {
		return err
	}

	if c.Bool("source") {
		text, _, err := sorting.Preview(plan)
		if err != nil {
			return err
		}
		_, err = formatter.Writer().Write(text)
		return err
	}
	return formatter.Output(res.Report())
}

// planService builds a cache-less service and formatter for the read-only
// commands.
func planService(c *cli.Context) (*sorting.Service, *output.Formatter, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	applySorterFlags(c, cfg)

	svc, err := sorting.New(sorting.WithConfig(cfg), sorting.WithLogger(newLogger(c, cfg)))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid preferences: %w", err)
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return nil, nil, err
	}
	return svc, formatter, nil
}
