package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolbox/internal/config"
	"github.com/conorfennell/knolbox/internal/logging"
	"github.com/conorfennell/knolbox/internal/storage"
)

// app carries what every command needs once flags are parsed.
type app struct {
	in  io.Reader
	out io.Writer

	cfg *config.Config
	log *slog.Logger
	db  *storage.DB
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "knolbox",
		Short: "A Leitner box flashcard trainer",
		Long: `Knolbox keeps flashcards from markdown notes in Leitner boxes and runs
resumable study sessions in the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logging.NewLogger(logging.Config{
				Format: cfg.Log.Format,
				Level:  logging.ParseLevel(cfg.Log.Level),
			})
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a YAML config file")
	flags.String("db", "knolbox.db", "Path to the SQLite database file")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("repos-dir", "repos", "Directory for git source checkouts")

	rootCmd.AddCommand(
		newDeckCmd(a),
		newSourceCmd(a),
		newSyncCmd(a),
		newStudyCmd(a),
		newStatsCmd(a),
		newSessionCmd(a),
	)
	return rootCmd
}

// store opens the database on first use.
func (a *app) store() (*storage.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := storage.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a.log.Debug("database opened", "path", a.cfg.Database.Path)
	a.db = db
	return db, nil
}
