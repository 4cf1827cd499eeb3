package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/movierec/internal/config"
)

var flagInitForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.movierec with a default config and .env template",
	Long: `Initialize ~/.movierec/.

Writes movierec.yaml with default settings (unless it already exists or
--force is given) and a .env template for poster lookup credentials.
Use the global --catalog flag to record where your catalog CSV lives:

  movierec init --catalog ~/data/tmdb_5000_movies.csv`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite an existing movierec.yaml with defaults")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.movierec directory ──────────────────────────────────────
	dir, err := config.MovieRecDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	// ── 2. Create ~/.movierec/ if it doesn't exist ────────────────────────────
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("MovieRec directory ready: %s", dir))

	// ── 3. Write movierec.yaml if missing ─────────────────────────────────────
	_, statErr := os.Stat(cfgPath)
	if os.IsNotExist(statErr) || flagInitForce {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if flagCatalog != "" {
			if cfg.CatalogPath, err = config.ExpandPath(flagCatalog); err != nil {
				return err
			}
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 4. Write .env template ────────────────────────────────────────────────
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	envPath, _ := config.DotEnvPath()
	printOK("", fmt.Sprintf("Secrets file ready: %s", envPath))

	// ── 5. Check the catalog ──────────────────────────────────────────────────
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.CatalogPath); err != nil {
		printWarn("", fmt.Sprintf("catalog not found at %s", cfg.CatalogPath))
		printInfo("", "download tmdb_5000_movies.csv (TMDB 5000 dataset) there, or set catalog_path")
	} else {
		printOK("", fmt.Sprintf("Catalog found: %s", cfg.CatalogPath))
	}
	return nil
}
