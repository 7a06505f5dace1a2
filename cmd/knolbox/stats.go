package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolbox/internal/leitner"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <deck>",
		Short: "Show box distribution and review counters for a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			deck, err := db.DeckByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			sched := leitner.NewScheduler(a.cfg.RuleSet())
			st := sched.Summarize(deck)
			rules := sched.Rules()

			fmt.Fprintf(a.out, "Deck %s\n", deck.Name)
			fmt.Fprintln(a.out, strings.Repeat("-", 5+len(deck.Name)))
			fmt.Fprintf(a.out, "Cards:     %d (%d active)\n", st.TotalCards, st.ActiveCards)
			fmt.Fprintf(a.out, "Due:       %d\n", st.DueCards)
			fmt.Fprintf(a.out, "New:       %d\n", st.NewCards)
			fmt.Fprintf(a.out, "Reviews:   %d (%d correct, %d incorrect)\n", st.TotalReviews, st.CorrectAnswers, st.IncorrectAnswers)

			peak := 0
			for _, n := range st.BoxCounts {
				peak = max(peak, n)
			}
			fmt.Fprintf(a.out, "Boxes:     %d (up to %d new cards a day)\n", rules.NumberOfBoxes, rules.MaxNewCardsPerDay)
			for box, n := range st.BoxCounts {
				bar := ""
				if peak > 0 {
					bar = strings.Repeat("#", (n*30+peak-1)/peak)
				}
				days := int(sched.Interval(box) / (24 * time.Hour))
				fmt.Fprintf(a.out, "  %2d %5d  every %5dd %s\n", box, n, days, bar)
			}
			return nil
		},
	}
}
