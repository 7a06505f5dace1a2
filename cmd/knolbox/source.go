package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolbox/internal/storage"
)

func newSourceCmd(a *app) *cobra.Command {
	sourceCmd := &cobra.Command{
		Use:   "source",
		Short: "Manage the notes feeding a deck",
	}

	sourceCmd.AddCommand(&cobra.Command{
		Use:   "add <deck> <path-or-git-url>",
		Short: "Add a local directory or git repository to a deck",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.store()
			if err != nil {
				return err
			}
			deck, err := db.DeckByName(ctx, args[0])
			if err != nil {
				return err
			}

			path, sourceType := args[1], storage.SourceLocal
			if isGitURL(path) {
				sourceType = storage.SourceGit
			} else if path, err = filepath.Abs(path); err != nil {
				return fmt.Errorf("failed to resolve %s: %w", args[1], err)
			}

			existing, err := db.FindSourceByPath(ctx, path)
			if err != nil {
				return err
			}
			if existing != nil {
				fmt.Fprintf(a.out, "Source already exists: %s\n", path)
				return nil
			}
			if _, err := db.InsertSource(ctx, deck.ID, path, sourceType); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %s source %s to deck %q. Run knolbox sync to import cards.\n", sourceType, path, deck.Name)
			return nil
		},
	})

	sourceCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			sources, err := db.GetAllSources(cmd.Context())
			if err != nil {
				return err
			}
			decks, err := db.ListDecks(cmd.Context())
			if err != nil {
				return err
			}
			names := make(map[string]string, len(decks))
			for _, d := range decks {
				names[d.ID] = d.Name
			}
			for _, s := range sources {
				scanned := "never"
				if s.LastScanned.Valid {
					scanned = s.LastScanned.Time.Local().Format(time.DateTime)
				}
				fmt.Fprintf(a.out, "%-4d %-5s %-16s %s (scanned: %s)\n", s.ID, s.Type, names[s.DeckID], s.Path, scanned)
			}
			return nil
		},
	})

	sourceCmd.AddCommand(&cobra.Command{
		Use:   "remove <path-or-git-url>",
		Short: "Stop syncing a source; its cards stay in the deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.store()
			if err != nil {
				return err
			}

			path := args[0]
			if !isGitURL(path) {
				if path, err = filepath.Abs(path); err != nil {
					return fmt.Errorf("failed to resolve %s: %w", args[0], err)
				}
			}

			source, err := db.FindSourceByPath(ctx, path)
			if err != nil {
				return err
			}
			if source == nil {
				return fmt.Errorf("source not found: %s", path)
			}
			if err := db.DeleteSource(ctx, source.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed source %s\n", path)
			return nil
		},
	})

	return sourceCmd
}

func isGitURL(path string) bool {
	return strings.HasSuffix(path, ".git") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "git@")
}
