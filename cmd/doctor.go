package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusis/movierec/internal/catalog"
	"github.com/kamusis/movierec/internal/config"
	"github.com/kamusis/movierec/internal/poster"
	"github.com/kamusis/movierec/internal/search/index"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that MovieRec's config, catalog and poster settings are usable.
Run this command when something seems wrong, or before filing a bug report.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("movierec doctor")
	fmt.Fprintln(stdout)

	// ── Check 1: movierec.yaml ────────────────────────────────────────────────
	fmt.Fprintln(stdout, "[ movierec.yaml ]")
	cfgPath, _ := config.ConfigPath()
	cfg, loadErr := config.Load()
	switch {
	case errors.Is(loadErr, os.ErrNotExist):
		printWarn("", fmt.Sprintf("%s not found, using defaults (run 'movierec init')", cfgPath))
		cfg, loadErr = loadSettings()
	case loadErr != nil:
		failD("cannot load config: %v", loadErr)
	default:
		printOK("", fmt.Sprintf("valid config: %s", cfgPath))
		cfg, loadErr = loadSettings()
	}
	fmt.Fprintln(stdout)

	// ── Check 2: catalog ──────────────────────────────────────────────────────
	fmt.Fprintln(stdout, "[ Catalog ]")
	if loadErr == nil {
		checkCatalog(cfg, failD)
	} else {
		printSkip("", "skipped (config not loaded)")
	}
	fmt.Fprintln(stdout)

	// ── Check 3: poster provider ──────────────────────────────────────────────
	fmt.Fprintln(stdout, "[ Posters ]")
	if loadErr == nil {
		checkPosters(cfg, failD)
	} else {
		printSkip("", "skipped (config not loaded)")
	}
	fmt.Fprintln(stdout)

	// ── Summary ───────────────────────────────────────────────────────────────
	fmt.Fprintln(stdout, "===================")
	if allOK {
		fmt.Fprintln(stdout, "✓  All checks passed. MovieRec is ready to use.")
		return nil
	}
	fmt.Fprintln(stderr, "✗  One or more checks failed. See details above.")
	return fmt.Errorf("doctor found issues")
}

func checkCatalog(cfg *config.Config, failD func(string, ...any)) {
	movies, stats, err := catalog.LoadCSV(cfg.CatalogPath, catalog.LoadOptions{TitleColumn: cfg.TitleColumn})
	if err != nil {
		failD("%v", err)
		return
	}
	printOK("", fmt.Sprintf("%s: %d of %d rows usable", cfg.CatalogPath, stats.Loaded, stats.Rows))
	if stats.MissingOverview > 0 {
		printInfo("", fmt.Sprintf("%d row(s) without an overview are skipped", stats.MissingOverview))
	}
	if stats.MissingTitle > 0 {
		printInfo("", fmt.Sprintf("%d row(s) without a title are skipped", stats.MissingTitle))
	}
	if stats.BadGenres > 0 {
		printWarn("", fmt.Sprintf("%d row(s) have an unreadable genres cell", stats.BadGenres))
	}

	start := time.Now()
	idx, err := index.Build(movies)
	if err != nil {
		failD("cannot build index: %v", err)
		return
	}
	printOK("", fmt.Sprintf("index built in %s: %d movies, %d terms", time.Since(start).Round(time.Millisecond), idx.Len(), idx.VocabularySize()))
}

func checkPosters(cfg *config.Config, failD func(string, ...any)) {
	pcfg, err := poster.LoadConfig()
	if err != nil {
		failD("cannot read poster settings: %v", err)
		return
	}
	prov, err := poster.NewFromConfig(pcfg, poster.SerpAPIOptions{})
	switch {
	case err != nil:
		failD("%v", err)
		return
	case prov == nil:
		printSkip("", "no poster provider configured (MOVIEREC_POSTER_PROVIDER is empty)")
		return
	}
	printOK("", fmt.Sprintf("provider: %s", prov.Name()))
	if !cfg.Posters.Enabled {
		printInfo("", "posters.enabled is false; pass --posters to look them up")
	}

	if cfg.Posters.CacheDir == "" {
		printSkip("", "no poster cache directory configured")
		return
	}
	cache, err := poster.OpenCache(prov, poster.CacheOptions{Dir: cfg.Posters.CacheDir, LockTimeout: time.Second})
	if err != nil {
		failD("poster cache: %v", err)
		return
	}
	if err := cache.Close(); err != nil {
		failD("poster cache: %v", err)
		return
	}
	printOK("", fmt.Sprintf("poster cache usable: %s", cfg.Posters.CacheDir))
}
