package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"github.com/vestigehq/vestige/internal/output"
	"github.com/vestigehq/vestige/internal/workspace"
)

func cyclesCmd() *cli.Command {
	return &cli.Command{
		Name:      "cycles",
		Aliases:   []string{"cy"},
		Usage:     "Report circular dependencies in the import graph",
		ArgsUsage: "[path]",
		Action:    runCycles,
	}
}

func runCycles(c *cli.Context) error {
	root, err := getRoot(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	orch := workspace.New(root, cfg)
	defer orch.Close()

	if err := orch.BuildStructure(context.Background()); err != nil {
		return err
	}

	cycles := orch.Cycles()
	if len(cycles) == 0 {
		color.Green("No circular dependencies found")
		return nil
	}

	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.CyclesTable(cycles))
}
