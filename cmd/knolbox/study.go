package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolbox/internal/domain"
	"github.com/conorfennell/knolbox/internal/leitner"
	"github.com/conorfennell/knolbox/internal/session"
	"github.com/conorfennell/knolbox/internal/terminal"
)

func newStudyCmd(a *app) *cobra.Command {
	var restart bool

	studyCmd := &cobra.Command{
		Use:   "study <deck>",
		Short: "Start or resume a study session",
		Long: `Study the due and new cards of a deck. A paused session for the same
deck is offered for resumption; --restart discards it first.`,
		Args: cobra.ExactArgs(1),
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

			prompter := terminal.New(a.in, a.out)
			machine := session.NewMachine(
				a.log,
				leitner.NewScheduler(a.cfg.RuleSet()),
				db,
				db,
				prompter,
				session.WithCheckpointEvery(a.cfg.Session.CheckpointEvery),
			)
			if restart {
				if err := machine.Discard(ctx, deck.ID); err != nil {
					return err
				}
			}

			result := machine.Start(ctx, session.Request{
				Deck:     deck,
				Mode:     a.cfg.StudyMode(),
				MaxCards: a.cfg.Session.MaxCards,
				Shuffle:  a.cfg.Session.Shuffle,
			})
			if result.Outcome == domain.OutcomeFailed {
				return errors.New(result.Message)
			}
			prompter.Summary(result)
			if result.Outcome == domain.OutcomePaused {
				fmt.Fprintf(a.out, "Run knolbox study %s to resume.\n", deck.Name)
			}
			return nil
		},
	}

	flags := studyCmd.Flags()
	flags.Int("max-cards", 20, "Maximum number of cards in a new session")
	flags.String("mode", "front-to-back", "Study mode: front-to-back, back-to-front or mixed")
	flags.Bool("shuffle", false, "Shuffle the study batch")
	flags.Int("checkpoint-every", session.DefaultCheckpointEvery, "Save progress after this many cards")
	flags.Int("max-new", 20, "Maximum new cards per session")
	flags.BoolVar(&restart, "restart", false, "Discard a paused session for this deck")
	return studyCmd
}
