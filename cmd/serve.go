package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/movierec/internal/api"
	"github.com/kamusis/movierec/internal/config"
	"github.com/kamusis/movierec/internal/logging"
	"github.com/kamusis/movierec/internal/poster"
	"github.com/kamusis/movierec/internal/search/index"
)

var flagServeListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations over an HTTP JSON API",
	Long: `Build the index once and serve it over HTTP.

Endpoints:
  GET  /api/v1/health
  GET  /api/v1/similar?title=...&k=5&posters=true
  GET  /api/v1/genres
  GET  /api/v1/movies?genre=Action&genre=Comedy&k=5
  POST /api/v1/index/rebuild
  GET  /metrics

SIGHUP (or POST /api/v1/index/rebuild) reloads the catalog and swaps in a
new index without interrupting requests in flight.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeListen, "listen", "", "Listen address (overrides server.listen)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if flagServeListen != "" {
		cfg.Server.Listen = flagServeListen
	}

	idx, err := loadIndex(cfg)
	if err != nil {
		return err
	}
	holder := index.NewHolder(idx)

	resolver := poster.NewResolver(nil, cfg.Posters.Timeout)
	if cfg.Posters.Enabled {
		r, closeFn, err := openResolver(cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		resolver = r
	}

	rebuild := func(context.Context) (*index.Index, error) { return loadIndex(cfg) }
	handler := api.NewHandler(holder, resolver, rebuild, cfg.TopN)
	srv := &http.Server{
		Addr: cfg.Server.Listen,
		Handler: api.NewRouter(handler, api.RouterConfig{
			RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
			CORSOrigins:        cfg.Server.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Listen).Int("movies", idx.Len()).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()
	printOK("", fmt.Sprintf("serving %d movies on http://%s", idx.Len(), cfg.Server.Listen))

	return waitForShutdown(srv, errCh, func() { reloadOnSignal(cfg, holder) })
}

// waitForShutdown blocks until the server fails or the process is asked to
// stop, calling onHangup for every SIGHUP in between.
func waitForShutdown(srv *http.Server, errCh <-chan error, onHangup func()) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("HTTP server failed: %w", err)
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				onHangup()
				continue
			}
			logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := srv.Shutdown(ctx)
			cancel()
			if err != nil {
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			printOK("", "server stopped")
			return nil
		}
	}
}

func reloadOnSignal(cfg *config.Config, holder *index.Holder) {
	idx, err := loadIndex(cfg)
	if err != nil {
		logging.Error().Err(err).Msg("index rebuild on SIGHUP failed, keeping current index")
		return
	}
	holder.Swap(idx)
	logging.Info().Int("movies", idx.Len()).Msg("index rebuilt on SIGHUP")
}
