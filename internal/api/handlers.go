package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kamusis/movierec/internal/catalog"
	"github.com/kamusis/movierec/internal/logging"
	"github.com/kamusis/movierec/internal/poster"
	"github.com/kamusis/movierec/internal/search/index"
)

const (
	maxK           = 100
	maxSuggestions = 5
	posterBudget   = 15 * time.Second
)

// BuildFunc loads the current catalog and builds a fresh index.
type BuildFunc func(ctx context.Context) (*index.Index, error)

// Handler serves the recommender endpoints.
type Handler struct {
	holder   *index.Holder
	posters  *poster.Resolver
	rebuild  BuildFunc
	defaultK int

	rebuildMu sync.Mutex
}

// NewHandler returns a Handler serving the index held by holder.
// rebuild may be nil, in which case the rebuild endpoint is unavailable.
func NewHandler(holder *index.Holder, posters *poster.Resolver, rebuild BuildFunc, defaultK int) *Handler {
	if defaultK <= 0 {
		defaultK = 5
	}
	return &Handler{holder: holder, posters: posters, rebuild: rebuild, defaultK: defaultK}
}

// MovieResult is one movie in an API reply.
type MovieResult struct {
	Title  string         `json:"title"`
	Genres []string       `json:"genres"`
	Score  *float64       `json:"score,omitempty"`
	Poster *poster.Poster `json:"poster,omitempty"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	idx := h.holder.Current()
	respondOK(w, r, map[string]any{
		"status":     "ok",
		"movies":     idx.Len(),
		"vocabulary": idx.VocabularySize(),
		"built_at":   idx.BuiltAt().UTC(),
		"posters":    h.posters.Enabled(),
	}, started)
}

// Similar handles GET /api/v1/similar?title=..&k=..&posters=true.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()
	title := strings.TrimSpace(q.Get("title"))
	if title == "" {
		respondError(w, r, http.StatusBadRequest, "MISSING_TITLE", "query parameter 'title' is required", nil)
		return
	}
	k, ok := h.parseK(w, r)
	if !ok {
		return
	}

	idx := h.holder.Current()
	matches, err := idx.Rank(title, k)
	var nf *index.NotFoundError
	switch {
	case errors.As(err, &nf):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", nf.Error(), map[string]any{
			"suggestions": idx.Suggest(title, maxSuggestions),
		})
		return
	case err != nil:
		respondError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error(), nil)
		return
	}

	results := make([]MovieResult, len(matches))
	for i, m := range matches {
		score := m.Score
		results[i] = MovieResult{Title: m.Title, Genres: m.Genres, Score: &score}
	}
	h.attachPosters(r, results)

	logging.Ctx(r.Context()).Debug().Str("title", title).Int("k", k).Int("results", len(results)).Msg("similar")
	respondOK(w, r, map[string]any{
		"query":   title,
		"results": results,
		"count":   len(results),
	}, started)
}

// Genres handles GET /api/v1/genres.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	genres := catalog.AllGenres(h.holder.Current().Movies())
	respondOK(w, r, map[string]any{"genres": genres, "count": len(genres)}, started)
}

// Movies handles GET /api/v1/movies?genre=..&genre=..&k=..&posters=true.
func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var selected []string
	for _, g := range r.URL.Query()["genre"] {
		for _, part := range strings.Split(g, ",") {
			if part = strings.TrimSpace(part); part != "" {
				selected = append(selected, part)
			}
		}
	}
	if len(selected) == 0 {
		respondError(w, r, http.StatusBadRequest, "MISSING_GENRE", "at least one 'genre' query parameter is required", nil)
		return
	}
	k, ok := h.parseK(w, r)
	if !ok {
		return
	}

	refs := catalog.FilterByGenres(h.holder.Current().Movies(), selected, k)
	results := make([]MovieResult, len(refs))
	for i, ref := range refs {
		results[i] = MovieResult{Title: ref.Title, Genres: ref.Genres}
	}
	h.attachPosters(r, results)

	respondOK(w, r, map[string]any{
		"genres":  selected,
		"results": results,
		"count":   len(results),
	}, started)
}

// Rebuild handles POST /api/v1/index/rebuild. The new index replaces the
// old one atomically; requests already running finish on the old index.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if h.rebuild == nil {
		respondError(w, r, http.StatusNotImplemented, "REBUILD_UNAVAILABLE", "index rebuild is not configured", nil)
		return
	}
	if !h.rebuildMu.TryLock() {
		respondError(w, r, http.StatusConflict, "REBUILD_IN_PROGRESS", "an index rebuild is already running", nil)
		return
	}
	defer h.rebuildMu.Unlock()

	idx, err := h.rebuild(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("index rebuild failed")
		respondError(w, r, http.StatusInternalServerError, "REBUILD_FAILED", err.Error(), nil)
		return
	}
	old := h.holder.Swap(idx)
	logging.Ctx(r.Context()).Info().Int("old_movies", old.Len()).Int("movies", idx.Len()).Msg("index swapped")
	respondOK(w, r, map[string]any{
		"movies":     idx.Len(),
		"vocabulary": idx.VocabularySize(),
		"built_at":   idx.BuiltAt().UTC(),
	}, started)
}

func (h *Handler) parseK(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("k")
	if raw == "" {
		return h.defaultK, true
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 1 || k > maxK {
		respondError(w, r, http.StatusBadRequest, "INVALID_K", "k must be an integer between 1 and 100", nil)
		return 0, false
	}
	return k, true
}

func (h *Handler) attachPosters(r *http.Request, results []MovieResult) {
	want, _ := strconv.ParseBool(r.URL.Query().Get("posters"))
	if !want {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), posterBudget)
	defer cancel()
	for i := range results {
		p := h.posters.Resolve(ctx, results[i].Title)
		results[i].Poster = &p
	}
}
