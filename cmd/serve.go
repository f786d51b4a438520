package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"aulinha/internal/config"
	"aulinha/internal/engine"
	"aulinha/internal/i18n"
	"aulinha/internal/motivator"
	"aulinha/internal/notify"
	"aulinha/internal/onboarding"
	"aulinha/internal/reading"
	"aulinha/internal/server"
	"aulinha/internal/storage"
	"aulinha/internal/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server and the reminder sweep loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
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

	eng := buildEngine(cfg, store)
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(eng).Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepLoop(ctx, cfg, eng)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// buildEngine assembles the component graph from config.
func buildEngine(cfg *config.Config, store storage.Storage) *engine.Engine {
	var mot motivator.Motivator = motivator.Static{}
	if cfg.LLMKey != "" {
		mot = motivator.NewOpenAI(cfg.LLMKey, cfg.LLMBaseURL, cfg.LLMModel)
	}
	return engine.New(cfg, store,
		onboarding.New(cfg),
		tracker.New(cfg, notify.LogNotifier{}, mot),
		reading.New(cfg, nil, nil))
}

// openStorage picks the backend from the path: .json files get the flat-file
// store, everything else opens SQLite.
func openStorage(path string) (storage.Storage, func(), error) {
	if strings.HasSuffix(path, ".json") {
		return storage.NewFileStore(path), func() {}, nil
	}
	db, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = db.Close() }, nil
}

// sweepLoop runs the reminder sweep until ctx is canceled. The engine owns
// the pass itself so sweep and message handling never touch the session
// database concurrently.
func sweepLoop(ctx context.Context, cfg *config.Config, eng *engine.Engine) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := eng.SweepReminders(ctx, now); err != nil {
				slog.Error("reminder sweep failed", "err", err)
			}
		}
	}
}
