package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures `movierec serve`.
type ServerConfig struct {
	Listen             string   `yaml:"listen" validate:"required"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute" validate:"gte=0"`
	CORSOrigins        []string `yaml:"cors_origins,omitempty"`
}

// PosterConfig configures poster lookups. Credentials live in ~/.movierec/.env.
type PosterConfig struct {
	Enabled           bool          `yaml:"enabled"`
	CacheDir          string        `yaml:"cache_dir,omitempty"`
	CacheTTL          time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gt=0"`
}

// LogConfig configures diagnostics logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled off"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// Config is the in-memory representation of ~/.movierec/movierec.yaml.
type Config struct {
	CatalogPath string       `yaml:"catalog_path" validate:"required"`
	TitleColumn string       `yaml:"title_column,omitempty"`
	TopN        int          `yaml:"top_n" validate:"gte=1,lte=100"`
	Server      ServerConfig `yaml:"server"`
	Posters     PosterConfig `yaml:"posters"`
	Log         LogConfig    `yaml:"log"`
}

// MovieRecDir returns the absolute path to ~/.movierec/.
func MovieRecDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".movierec"), nil
}

// ConfigPath returns the absolute path to ~/.movierec/movierec.yaml.
func ConfigPath() (string, error) {
	dir, err := MovieRecDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "movierec.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the Config written by `movierec init`.
func DefaultConfig() (*Config, error) {
	dir, err := MovieRecDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		CatalogPath: filepath.Join(dir, "tmdb_5000_movies.csv"),
		TitleColumn: "original_title",
		TopN:        5,
		Server: ServerConfig{
			Listen:             "127.0.0.1:8080",
			RateLimitPerMinute: 120,
			CORSOrigins:        []string{"*"},
		},
		Posters: PosterConfig{
			Enabled:           false,
			CacheDir:          filepath.Join(dir, "posters"),
			CacheTTL:          7 * 24 * time.Hour,
			Timeout:           5 * time.Second,
			RequestsPerSecond: 2,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}, nil
}

// Load reads and parses ~/.movierec/movierec.yaml.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config at path. Keys missing from the
// file keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to DefaultConfig when no config file exists.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig()
	}
	return cfg, err
}

func (c *Config) expandPaths() error {
	var err error
	if c.CatalogPath, err = ExpandPath(c.CatalogPath); err != nil {
		return err
	}
	if c.Posters.CacheDir, err = ExpandPath(c.Posters.CacheDir); err != nil {
		return err
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Save marshals cfg and writes it to ~/.movierec/movierec.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
