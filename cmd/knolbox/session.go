package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSessionCmd(a *app) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or discard the paused study session",
	}

	sessionCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			state, err := db.CurrentSession(cmd.Context())
			if err != nil {
				return err
			}
			if state == nil {
				fmt.Fprintln(a.out, "No stored session.")
				return nil
			}
			deckName := state.DeckID
			if deck, err := db.LoadDeck(cmd.Context(), state.DeckID); err == nil {
				deckName = deck.Name
			}
			status := "finished"
			if state.IsActive {
				status = "paused"
			}
			fmt.Fprintf(a.out, "Deck:      %s\n", deckName)
			fmt.Fprintf(a.out, "Status:    %s\n", status)
			fmt.Fprintf(a.out, "Mode:      %s\n", state.StudyMode)
			fmt.Fprintf(a.out, "Started:   %s\n", state.SessionStartTime.Local().Format(time.DateTime))
			fmt.Fprintf(a.out, "Saved:     %s\n", state.LastSaveTime.Local().Format(time.DateTime))
			fmt.Fprintf(a.out, "Progress:  %d/%d, %d queued for retry\n",
				state.CurrentCardIndex, len(state.CardsToStudy), len(state.IncorrectCards))
			fmt.Fprintf(a.out, "Correct:   %d of %d answered\n",
				state.Statistics.CorrectAnswers, state.Statistics.CorrectAnswers+state.Statistics.IncorrectAnswers)
			return nil
		},
	})

	sessionCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			state, err := db.CurrentSession(cmd.Context())
			if err != nil {
				return err
			}
			if state == nil {
				fmt.Fprintln(a.out, "No stored session.")
				return nil
			}
			if err := db.ClearSession(cmd.Context(), state.DeckID); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Session cleared.")
			return nil
		},
	})

	return sessionCmd
}
