package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shash-786/wordle-engine/internal/config"
	"github.com/shash-786/wordle-engine/internal/history"
	"github.com/shash-786/wordle-engine/internal/httpserver"
	"github.com/shash-786/wordle-engine/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String(config.FlagName("port"), "", "listen port")
	f.Int(config.FlagName("max_guesses"), 0, "accepted guesses per game")
	f.String(config.FlagName("mode"), "", "secret selection: random or daily")
	f.String(config.FlagName("db_path"), "", "SQLite file for results history (empty disables)")
	f.Duration(config.FlagName("session_idle"), 0, "drop sessions idle this long (0 keeps them)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// history is optional; keep rec a nil interface when disabled
	var rec httpserver.Recorder
	if cfg.DBPath != "" {
		hs, err := history.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer hs.Close()
		rec = hs
	}

	sessions := store.NewMemoryStore()
	srv := httpserver.New(sessions, cfg.Source(), rec, httpserver.Options{
		WordLength:    cfg.WordLength,
		MaxGuesses:    cfg.MaxGuesses,
		Selector:      cfg.Selector(),
		DailySalt:     cfg.DailySalt,
		JWTSecret:     cfg.JWTSecret,
		CookieName:    cfg.CookieName,
		ClientOrigin:  cfg.ClientOrigin,
		SecureCookies: cfg.Production(),
		Logger:        log.Logger,
	})
	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("mode", cfg.Mode).Bool("history", rec != nil).Msg("starting wordle-engine")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.SessionIdle > 0 {
		g.Go(func() error { return pruneSessions(gctx, sessions, cfg.SessionIdle) })
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	return g.Wait()
}

// pruneSessions evicts idle sessions until ctx is done.
func pruneSessions(ctx context.Context, st store.Store, idle time.Duration) error {
	every := idle / 4
	if every < time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := st.Prune(ctx, idle)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if n > 0 {
				log.Info().Int("pruned", n).Int("remaining", st.Len()).Msg("idle sessions dropped")
			}
		}
	}
}
