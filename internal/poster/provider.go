// Package poster looks up poster images for movie titles.
//
// Posters are a rendering concern: the similarity index never calls this
// package. Any failure resolves to an "image unavailable" placeholder
// through Resolver.
package poster

import (
	"context"
	"errors"
	"fmt"

	"github.com/kamusis/movierec/internal/config"
)

// ErrNotFound is returned when a search yields no image for a title.
var ErrNotFound = errors.New("no poster found")

// Provider finds a poster image URL for a movie title.
type Provider interface {
	Name() string
	Poster(ctx context.Context, title string) (string, error)
}

// Config contains the resolved poster provider configuration.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
}

// LoadConfig resolves poster config from environment variables first, then ~/.movierec/.env.
func LoadConfig() (*Config, error) {
	provider, err := config.GetConfigValue("MOVIEREC_POSTER_PROVIDER")
	if err != nil {
		return nil, err
	}
	apiKey, err := config.GetConfigValue("MOVIEREC_SERPAPI_API_KEY")
	if err != nil {
		return nil, err
	}
	baseURL, err := config.GetConfigValue("MOVIEREC_SERPAPI_BASE_URL")
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = DefaultSerpAPIBaseURL
	}
	return &Config{
		Provider: provider,
		APIKey:   apiKey,
		BaseURL:  baseURL,
	}, nil
}

// NewFromConfig returns the configured provider, or nil when poster lookups
// are not configured.
func NewFromConfig(cfg *Config, opts SerpAPIOptions) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("poster config is nil")
	}
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "serpapi":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("SerpAPI key is not configured (set MOVIEREC_SERPAPI_API_KEY)")
		}
		return NewSerpAPI(cfg.APIKey, cfg.BaseURL, opts), nil
	default:
		return nil, fmt.Errorf("unsupported poster provider: %s", cfg.Provider)
	}
}
