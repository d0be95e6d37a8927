// Package vcs derives change sets from the git worktree so incremental
// analysis can scope itself to what the developer actually touched.
package vcs

import (
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/vestigehq/vestige/pkg/models"
)

// ChangedFiles returns the paths of files added or modified in the
// worktree relative to HEAD, resolved against the repository root.
// Deleted files are excluded since there is nothing left to analyze.
func ChangedFiles(repoPath string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}

	root := wt.Filesystem.Root()
	var files []string
	for path, s := range status {
		if s.Staging == git.Deleted || s.Worktree == git.Deleted {
			continue
		}
		if s.Staging == git.Unmodified && s.Worktree == git.Unmodified {
			continue
		}
		files = append(files, filepath.Join(root, path))
	}
	sort.Strings(files)
	return files, nil
}

// ChangeSetFromWorktree wraps the dirty worktree files in a ChangeSet.
func ChangeSetFromWorktree(repoPath string) (models.ChangeSet, error) {
	files, err := ChangedFiles(repoPath)
	if err != nil {
		return models.ChangeSet{}, err
	}
	return models.NewChangeSet(files), nil
}
