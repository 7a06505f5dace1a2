package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newDeckCmd(a *app) *cobra.Command {
	deckCmd := &cobra.Command{
		Use:   "deck",
		Short: "Create, list and delete decks",
	}

	deckCmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			deck, err := db.CreateDeck(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created deck %q (%s)\n", deck.Name, deck.ID)
			return nil
		},
	})

	deckCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List decks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			decks, err := db.ListDecks(cmd.Context())
			if err != nil {
				return err
			}
			if len(decks) == 0 {
				fmt.Fprintln(a.out, "No decks yet. Create one with: knolbox deck create <name>")
				return nil
			}
			for _, d := range decks {
				studied := "never"
				if d.Statistics.LastStudied != nil {
					studied = d.Statistics.LastStudied.Local().Format(time.DateTime)
				}
				fmt.Fprintf(a.out, "%-24s last studied: %s\n", d.Name, studied)
			}
			return nil
		},
	})

	deckCmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a deck with its cards, sources and saved session",
		Args:  cobra.ExactArgs(1),
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
			if err := db.ClearSession(ctx, deck.ID); err != nil {
				return err
			}
			if err := db.DeleteDeck(ctx, deck.ID); err != nil {
				return err
			}
			a.log.Info("deleted deck", "deck", deck.Name, "cards", len(deck.Cards))
			fmt.Fprintf(a.out, "Deleted deck %q and its %d cards\n", deck.Name, len(deck.Cards))
			return nil
		},
	})

	return deckCmd
}
