package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"aulinha/internal/config"
	"aulinha/internal/i18n"
	"aulinha/internal/motivator"
	"aulinha/internal/notify"
	"aulinha/internal/tracker"
)

// sweepCmd runs one reminder pass and exits, for deployments that prefer
// cron over the in-process loop.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one reminder sweep over all sessions and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		setupLogging(v)

		cfg, err := config.Load(v)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := i18n.Init(i18n.DefaultLang); err != nil {
			return fmt.Errorf("init i18n: %w", err)
		}

		store, closeStore, err := openStorage(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer closeStore()

		db, err := store.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}

		trk := tracker.New(cfg, notify.LogNotifier{}, motivator.Static{})
		if !trk.CheckReminders(db, time.Now()) {
			return nil
		}
		return store.Save(cmd.Context(), db)
	},
}
