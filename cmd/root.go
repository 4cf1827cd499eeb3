package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/movierec/internal/config"
	"github.com/kamusis/movierec/internal/logging"
)

var (
	flagCatalog   string
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:          "movierec",
	Short:        "MovieRec: content-based movie recommendations",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `MovieRec recommends movies whose plot overviews read alike.

It builds a TF-IDF index over a movie catalog (CSV, TMDB layout) at startup
and answers "more like this" and genre queries from the CLI or over HTTP.
Configuration lives in ~/.movierec/movierec.yaml.`,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Path to the movie catalog CSV (overrides catalog_path)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log.level)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: console or json (overrides log.format)")
}

// setupLogging configures the global logger from config, then flags.
// A broken config file is not fatal here; commands report it themselves.
func setupLogging(_ *cobra.Command, _ []string) error {
	lc := logging.DefaultConfig()
	if cfg, err := config.LoadOrDefault(); err == nil {
		if cfg.Log.Level != "" {
			lc.Level = cfg.Log.Level
		}
		if cfg.Log.Format != "" {
			lc.Format = cfg.Log.Format
		}
	}
	if flagLogLevel != "" {
		lc.Level = flagLogLevel
	}
	switch flagLogFormat {
	case "":
	case "json", "console":
		lc.Format = flagLogFormat
	default:
		return fmt.Errorf("invalid --log-format %q (want console or json)", flagLogFormat)
	}
	logging.Init(lc)
	return nil
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
