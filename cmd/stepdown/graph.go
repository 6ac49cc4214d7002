package main

import (
	"errors"
	"fmt"

	"github.com/panbanda/stepdown/internal/service/sorting"
	"github.com/urfave/cli/v2"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Usage:     "Show the local call graph of a file",
		ArgsUsage: "<file>",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "mermaid",
				Usage: "Print a mermaid flowchart",
			},
		}, sorterFlags()...),
		Action: runGraphCmd,
	}
}

func runGraphCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("graph takes exactly one file")
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
	graph := sorting.Graph(plan)

	if c.Bool("mermaid") {
		_, err := fmt.Fprint(formatter.Writer(), graph.Mermaid())
		return err
	}
	return formatter.Output(graph.Report())
}
