package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kamusis/movierec/internal/catalog"
	"github.com/kamusis/movierec/internal/config"
	"github.com/kamusis/movierec/internal/logging"
	"github.com/kamusis/movierec/internal/poster"
	"github.com/kamusis/movierec/internal/search/index"
)

// loadSettings returns the config file (or defaults) with flag overrides applied.
func loadSettings() (*config.Config, error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nFix ~/.movierec/movierec.yaml or run 'movierec init'.", err)
	}
	if flagCatalog != "" {
		p, err := config.ExpandPath(flagCatalog)
		if err != nil {
			return nil, err
		}
		cfg.CatalogPath = p
	}
	return cfg, nil
}

// loadCatalog reads the catalog at cfg.CatalogPath.
func loadCatalog(cfg *config.Config) ([]catalog.Movie, error) {
	movies, stats, err := catalog.LoadCSV(cfg.CatalogPath, catalog.LoadOptions{TitleColumn: cfg.TitleColumn})
	if err != nil {
		return nil, fmt.Errorf("cannot load catalog: %w", err)
	}
	logging.Info().
		Str("path", cfg.CatalogPath).
		Int("rows", stats.Rows).
		Int("loaded", stats.Loaded).
		Int("missing_overview", stats.MissingOverview).
		Int("missing_title", stats.MissingTitle).
		Int("bad_genres", stats.BadGenres).
		Msg("catalog loaded")
	return movies, nil
}

// loadIndex reads the catalog at cfg.CatalogPath and builds a fresh index.
func loadIndex(cfg *config.Config) (*index.Index, error) {
	movies, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	idx, err := index.Build(movies)
	if errors.Is(err, index.ErrEmptyCatalog) {
		return nil, fmt.Errorf("catalog %s has no movies with an overview: %w", cfg.CatalogPath, err)
	}
	return idx, err
}

// openResolver builds the poster resolver used by the rendering layers.
// Without a configured provider the resolver always yields the
// placeholder. The close func is never nil.
func openResolver(cfg *config.Config) (*poster.Resolver, func(), error) {
	noop := func() {}
	pcfg, err := poster.LoadConfig()
	if err != nil {
		return nil, noop, err
	}
	prov, err := poster.NewFromConfig(pcfg, poster.SerpAPIOptions{
		Timeout:           cfg.Posters.Timeout,
		RequestsPerSecond: cfg.Posters.RequestsPerSecond,
	})
	if err != nil {
		return nil, noop, err
	}
	if prov == nil {
		printWarn("", "posters requested but no provider is configured (set MOVIEREC_POSTER_PROVIDER in ~/.movierec/.env)")
		return poster.NewResolver(nil, cfg.Posters.Timeout), noop, nil
	}

	closeFn := noop
	if cfg.Posters.CacheDir != "" {
		cache, err := poster.OpenCache(prov, poster.CacheOptions{
			Dir:         cfg.Posters.CacheDir,
			TTL:         cfg.Posters.CacheTTL,
			LockTimeout: 2 * time.Second,
		})
		if err != nil {
			logging.Warn().Err(err).Msg("poster cache unavailable, looking posters up uncached")
		} else {
			prov = cache
			closeFn = func() {
				if err := cache.Close(); err != nil {
					logging.Warn().Err(err).Msg("cannot close poster cache")
				}
			}
		}
	}
	return poster.NewResolver(prov, cfg.Posters.Timeout), closeFn, nil
}

// posterLabel renders a resolved poster for terminal output.
func posterLabel(p poster.Poster) string {
	if p.Available {
		return p.URL
	}
	return poster.Placeholder
}

// wantPosters reports whether a command should decorate its output with posters.
func wantPosters(cfg *config.Config, flag bool) bool {
	return flag || cfg.Posters.Enabled
}

// resolvePosters looks up one poster per title; a nil resolver yields nil.
func resolvePosters(r *poster.Resolver, titles []string) []poster.Poster {
	if r == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return r.ResolveAll(ctx, titles)
}
