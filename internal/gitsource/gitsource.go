// Package gitsource keeps local checkouts of git-hosted card repositories.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-git/go-git/v5"
)

// Sync clones a git repository if it doesn't exist at the given path,
// or pulls the latest changes if it does. Progress output from the remote is
// written to progress when it is non-nil.
func Sync(ctx context.Context, log *slog.Logger, url, localPath string, progress io.Writer) error {
	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		log.Info("cloning repository", "url", url, "path", localPath)
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:      url,
			Progress: progress,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", url, err)
		}
		log.Info("clone complete", "path", localPath)
	case err == nil:
		log.Info("pulling repository", "path", localPath)
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}

		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}

		err = worktree.PullContext(ctx, &git.PullOptions{
			RemoteName: "origin",
			Progress:   progress,
		})
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			log.Debug("repository already up to date", "path", localPath)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
		log.Info("pull complete", "path", localPath)
	default:
		return fmt.Errorf("failed to check path %s: %w", localPath, err)
	}

	return nil
}
