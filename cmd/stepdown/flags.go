package main

import (
	"github.com/panbanda/stepdown/pkg/config"
	"github.com/urfave/cli/v2"
)

// sorterFlags override the sorter section of the config.
func sorterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "priorities",
			Usage: "Ordering priorities, most significant first (e.g. INVOCATION,ACCESS_LEVEL)",
		},
		&cli.StringFlag{
			Name:  "strategy",
			Usage: "Invocation strategy: depth-first or breadth-first",
		},
		&cli.StringFlag{
			Name:  "startpoint",
			Usage: "Startpoint strategy: heuristic or user",
		},
		&cli.BoolFlag{
			Name:  "no-before-after",
			Usage: "Ignore declaration order when calls tie",
		},
		&cli.BoolFlag{
			Name:  "cluster-getter-setter",
			Usage: "Keep getters and setters of a property together",
		},
		&cli.BoolFlag{
			Name:  "cluster-overloaded",
			Usage: "Keep overloaded methods together",
		},
		&cli.BoolFlag{
			Name:  "no-this-calls",
			Usage: "Do not count this.method() calls as local calls",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "Seed for the RANDOM priority",
		},
	}
}

// applySorterFlags copies the flags the user set onto cfg.
func applySorterFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("priorities") {
		cfg.Sorter.Priorities = c.StringSlice("priorities")
	}
	if c.IsSet("strategy") {
		cfg.Sorter.InvocationStrategy = c.String("strategy")
	}
	if c.IsSet("startpoint") {
		cfg.Sorter.StartpointStrategy = c.String("startpoint")
	}
	if c.Bool("no-before-after") {
		cfg.Sorter.RespectBeforeAfter = false
	}
	if c.Bool("cluster-getter-setter") {
		cfg.Sorter.ClusterGetterSetter = true
	}
	if c.Bool("cluster-overloaded") {
		cfg.Sorter.ClusterOverloaded = true
	}
	if c.Bool("no-this-calls") {
		cfg.Sorter.ThisCalls = false
	}
	if c.IsSet("seed") {
		cfg.Sorter.RandomSeed = c.Int64("seed")
	}
}
