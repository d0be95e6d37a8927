package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"github.com/vestigehq/vestige/internal/output"
	"github.com/vestigehq/vestige/internal/workspace"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Result cache operations",
		Subcommands: []*cli.Command{
			{
				Name:      "stats",
				Usage:     "Run a workspace pass and report cache effectiveness",
				ArgsUsage: "[path]",
				Action:    runCacheStats,
			},
		},
	}
}

func runCacheStats(c *cli.Context) error {
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

	// Two passes over unchanged content: the second is served from cache,
	// so the stats show both the miss and the hit path.
	ctx := context.Background()
	if _, err := orch.AnalyzeWorkspace(ctx); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if _, err := orch.AnalyzeWorkspace(ctx); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.CacheStatsSection(orch.CacheStats()))
}
