package poster

import (
	"context"
	"errors"
	"time"

	"github.com/kamusis/movierec/internal/logging"
	"github.com/kamusis/movierec/internal/metrics"
)

// Placeholder is shown when no poster is available.
const Placeholder = "poster not found"

// Poster is the rendering-layer view of a lookup.
type Poster struct {
	URL       string `json:"url,omitempty"`
	Available bool   `json:"available"`
}

// Resolver turns every lookup outcome into a Poster. It never returns an
// error and never blocks longer than its timeout.
type Resolver struct {
	provider Provider
	timeout  time.Duration
}

// NewResolver wraps provider. A nil provider always yields the placeholder.
func NewResolver(provider Provider, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{provider: provider, timeout: timeout}
}

// Enabled reports whether lookups reach a provider at all.
func (r *Resolver) Enabled() bool {
	return r != nil && r.provider != nil
}

// Resolve looks up the poster for title.
func (r *Resolver) Resolve(ctx context.Context, title string) Poster {
	if !r.Enabled() {
		return Poster{}
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	url, err := r.provider.Poster(ctx, title)
	source := r.provider.Name()
	switch {
	case err == nil && url != "":
		metrics.PosterLookups.WithLabelValues(source, "ok").Inc()
		return Poster{URL: url, Available: true}
	case err == nil, errors.Is(err, ErrNotFound):
		metrics.PosterLookups.WithLabelValues(source, "not_found").Inc()
	default:
		metrics.PosterLookups.WithLabelValues(source, "error").Inc()
		logging.Ctx(ctx).Debug().Err(err).Str("title", title).Msg("poster lookup failed")
	}
	return Poster{}
}

// ResolveAll resolves titles in order.
func (r *Resolver) ResolveAll(ctx context.Context, titles []string) []Poster {
	out := make([]Poster, len(titles))
	for i, t := range titles {
		out[i] = r.Resolve(ctx, t)
	}
	return out
}
