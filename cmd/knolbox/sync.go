package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolbox/internal/sync"
)

func newSyncCmd(a *app) *cobra.Command {
	var quiet bool

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Import cards from every source into its deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			opts := sync.Options{ReposDir: a.cfg.ReposDir}
			if !quiet {
				opts.Progress = os.Stderr
			}
			reports, err := sync.RunSync(cmd.Context(), db, a.log, opts)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Fprintln(a.out, "Nothing to sync. Add a source with: knolbox source add <deck> <path>")
			}
			for _, r := range reports {
				fmt.Fprintf(a.out, "%s: %d parsed, %d added, %d deactivated, %d reactivated, %d errors\n",
					r.Deck, r.Parsed, r.Added, r.Deactivated, r.Reactivated, r.Errors)
			}
			return nil
		},
	}
	syncCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide git progress output")
	return syncCmd
}
