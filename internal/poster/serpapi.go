package poster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/kamusis/movierec/internal/logging"
)

// DefaultSerpAPIBaseURL is the public SerpAPI endpoint.
const DefaultSerpAPIBaseURL = "https://serpapi.com"

// SerpAPIOptions tunes request pacing and failure handling.
type SerpAPIOptions struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	// FailureThreshold consecutive failures open the breaker for BreakerTimeout.
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

func (o SerpAPIOptions) withDefaults() SerpAPIOptions {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = 2
	}
	if o.FailureThreshold == 0 {
		o.FailureThreshold = 5
	}
	if o.BreakerTimeout <= 0 {
		o.BreakerTimeout = 30 * time.Second
	}
	return o
}

type serpAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
}

// NewSerpAPI constructs a provider backed by SerpAPI's Google Images engine.
//
// It uses the REST endpoint:
//
//	GET {baseURL}/search.json?q=<title> movie poster&tbm=isch&api_key=...
//
// and returns images_results[0].original.
func NewSerpAPI(apiKey, baseURL string, opts SerpAPIOptions) Provider {
	opts = opts.withDefaults()
	log := logging.WithComponent("poster")
	threshold := opts.FailureThreshold
	return &serpAPIProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		breaker: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:    "serpapi",
			Timeout: opts.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// A title without an image is a successful lookup.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("poster circuit breaker state changed")
			},
		}),
	}
}

func (p *serpAPIProvider) Name() string {
	return "serpapi"
}

func (p *serpAPIProvider) Poster(ctx context.Context, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("cannot look up poster for empty title")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return p.breaker.Execute(func() (string, error) {
		return p.search(ctx, title)
	})
}

func (p *serpAPIProvider) search(ctx context.Context, title string) (string, error) {
	q := url.Values{}
	q.Set("q", title+" movie poster")
	q.Set("tbm", "isch")
	q.Set("api_key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("poster search failed: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Error         string `json:"error"`
		ImagesResults []struct {
			Original  string `json:"original"`
			Thumbnail string `json:"thumbnail"`
		} `json:"images_results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("cannot parse poster search response: %w", err)
	}
	if parsed.Error != "" && len(parsed.ImagesResults) == 0 {
		if strings.Contains(strings.ToLower(parsed.Error), "hasn't returned any results") {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("poster search error: %s", parsed.Error)
	}
	for _, img := range parsed.ImagesResults {
		if img.Original != "" {
			return img.Original, nil
		}
	}
	return "", ErrNotFound
}
