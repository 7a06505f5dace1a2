package gitsource

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSync_ExistingDirIsNotARepo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("Q: a\nA: b\n"), 0o644))

	err := Sync(context.Background(), discardLogger(), "https://example.com/cards.git", dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open existing repo")
}

func TestSync_RepoWithoutOrigin(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	err = Sync(context.Background(), discardLogger(), "https://example.com/cards.git", dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to pull changes")
}

func TestSync_CloneCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := filepath.Join(t.TempDir(), "clone")
	err := Sync(ctx, discardLogger(), "https://example.com/cards.git", target, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clone repo")
}
