package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"github.com/vestigehq/vestige/internal/output"
	"github.com/vestigehq/vestige/internal/progress"
	"github.com/vestigehq/vestige/internal/workspace"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze the whole workspace for dead symbols and cycles",
		ArgsUsage: "[path]",
		Action:    runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
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

	spinner := progress.NewSpinner("Analyzing workspace...")
	summary, err := orch.AnalyzeWorkspace(context.Background())
	if err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	spinner.FinishSuccess()

	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.FindingsTable(summary, formatter.Colored())); err != nil {
		return err
	}

	if cfg.Output.Verbose && formatter.Format() == output.FormatText {
		if err := formatter.Output(output.CacheStatsSection(orch.CacheStats())); err != nil {
			return err
		}
	}

	if summary.FailedFiles > 0 {
		color.Yellow("%d file(s) could not be analyzed", summary.FailedFiles)
	}
	return nil
}
