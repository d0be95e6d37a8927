package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"github.com/vestigehq/vestige/internal/output"
	"github.com/vestigehq/vestige/internal/vcs"
	"github.com/vestigehq/vestige/internal/workspace"
	"github.com/vestigehq/vestige/pkg/models"
)

func changesCmd() *cli.Command {
	return &cli.Command{
		Name:      "changes",
		Aliases:   []string{"ch"},
		Usage:     "Analyze only the modules affected by changed files",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "file",
				Aliases: []string{"F"},
				Usage:   "Changed file (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "from-git",
				Usage: "Take changed files from the git worktree status",
			},
		},
		Action: runChanges,
	}
}

func runChanges(c *cli.Context) error {
	root, err := getRoot(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	changes, err := resolveChanges(c, root)
	if err != nil {
		return err
	}
	if len(changes.Files) == 0 {
		color.Yellow("No changed files")
		return nil
	}

	orch := workspace.New(root, cfg)
	defer orch.Close()

	ctx := context.Background()
	if err := orch.BuildStructure(ctx); err != nil {
		return err
	}
	result, err := orch.AnalyzeIncremental(ctx, changes)
	if err != nil {
		return fmt.Errorf("incremental analysis failed: %w", err)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() != output.FormatText && formatter.Format() != output.FormatMarkdown {
		return formatter.Output(result)
	}

	if err := formatter.Output(output.AffectedTable(result.Scope)); err != nil {
		return err
	}
	return formatter.Output(output.FindingsTable(result.Summary, formatter.Colored()))
}

// resolveChanges builds the change set from --file flags or the git
// worktree. Relative --file paths are resolved against the workspace root.
func resolveChanges(c *cli.Context, root string) (models.ChangeSet, error) {
	if c.Bool("from-git") {
		return vcs.ChangeSetFromWorktree(root)
	}

	files := c.StringSlice("file")
	resolved := make([]string, 0, len(files))
	for _, f := range files {
		if !filepath.IsAbs(f) {
			f = filepath.Join(root, f)
		}
		resolved = append(resolved, f)
	}
	return models.NewChangeSet(resolved), nil
}
