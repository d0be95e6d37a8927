package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"github.com/vestigehq/vestige/internal/output"
	"github.com/vestigehq/vestige/internal/workspace"
	"github.com/vestigehq/vestige/pkg/models"
	"github.com/vestigehq/vestige/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Aliases:   []string{"w"},
		Usage:     "Watch the workspace and re-analyze changed modules",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: 500 * time.Millisecond,
				Usage: "Quiet period before a batch of changes is analyzed",
			},
		},
		Action: runWatch,
	}
}

func runWatch(c *cli.Context) error {
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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Full pass first so incremental runs have structure to scope against.
	color.Cyan("Running initial analysis...")
	summary, err := orch.AnalyzeWorkspace(ctx)
	if err != nil {
		return fmt.Errorf("initial analysis failed: %w", err)
	}
	printWatchSummary(root, summary, cfg.Output.Color)

	watcher, err := watch.NewWatcher(root, cfg, c.Duration("debounce"))
	if err != nil {
		return err
	}
	defer watcher.Stop()

	watcher.SetHandler(func(changes models.ChangeSet) {
		orch.InvalidateFiles(changes.Files)
		result, err := orch.AnalyzeIncremental(ctx, changes)
		if err != nil {
			color.Red("Analysis error: %v", err)
			return
		}
		printChangeBanner(root, changes)
		printWatchSummary(root, result.Summary, cfg.Output.Color)
	})

	color.Cyan("Watching for changes in %s...", root)
	color.Cyan("Press Ctrl+C to stop")
	fmt.Println()

	if err := watcher.Start(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func printChangeBanner(root string, changes models.ChangeSet) {
	names := make([]string, 0, len(changes.Files))
	for _, f := range changes.Files {
		if rel, err := filepath.Rel(root, f); err == nil {
			f = rel
		}
		names = append(names, f)
	}
	color.Yellow("\nChanged: %s", strings.Join(names, ", "))
	fmt.Println(strings.Repeat("-", 40))
}

func printWatchSummary(root string, summary *models.WorkspaceAnalysisResult, colored bool) {
	if summary.TotalFindings == 0 && summary.FailedFiles == 0 {
		color.Green("Clean: %d files analyzed", len(summary.Files))
		return
	}
	output.FindingsTable(summary, colored).RenderText(os.Stdout, colored)
}
