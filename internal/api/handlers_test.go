package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/kamusis/movierec/internal/catalog"
	"github.com/kamusis/movierec/internal/poster"
	"github.com/kamusis/movierec/internal/search/index"
)

func testMovies() []catalog.Movie {
	return []catalog.Movie{
		{Title: "Inception", Genres: []string{"Action", "Science Fiction"},
			Overview: "A thief steals corporate secrets through dream sharing technology."},
		{Title: "Dream Heist", Genres: []string{"Thriller"},
			Overview: "A thief steals corporate secrets through dream sharing."},
		{Title: "Cooking Show", Genres: []string{"Comedy"},
			Overview: "A chef opens a restaurant in Paris."},
		{Title: "Space Odyssey", Genres: []string{"Science Fiction"},
			Overview: "Astronauts travel to Jupiter with a sentient computer."},
	}
}

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) Poster(_ context.Context, title string) (string, error) {
	if title == "Dream Heist" {
		return "https://img.example/dream.jpg", nil
	}
	return "", poster.ErrNotFound
}

func newTestServer(t *testing.T, rebuild BuildFunc) (http.Handler, *index.Holder) {
	t.Helper()
	idx, err := index.Build(testMovies())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	holder := index.NewHolder(idx)
	h := NewHandler(holder, poster.NewResolver(stubProvider{}, 0), rebuild, 3)
	return NewRouter(h, RouterConfig{CORSOrigins: []string{"*"}}), holder
}

type envelope struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
	Error  *APIError      `json:"error"`
	Meta   Metadata       `json:"metadata"`
}

func do(t *testing.T, srv http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(target, "/api/") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s: %v (%s)", target, err, rec.Body.String())
		}
	}
	return rec, env
}

func resultTitles(t *testing.T, env envelope) []string {
	t.Helper()
	raw, ok := env.Data["results"].([]any)
	if !ok {
		t.Fatalf("results missing: %#v", env.Data)
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = r.(map[string]any)["title"].(string)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec, env := do(t, srv, http.MethodGet, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if env.Data["movies"].(float64) != 4 {
		t.Fatalf("movies=%v", env.Data["movies"])
	}
	if env.Meta.RequestID == "" || rec.Header().Get("X-Request-ID") != env.Meta.RequestID {
		t.Fatalf("request id not propagated: header=%q meta=%q", rec.Header().Get("X-Request-ID"), env.Meta.RequestID)
	}
}

func TestSimilar(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec, env := do(t, srv, http.MethodGet, "/api/v1/similar?title=inception&k=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	titles := resultTitles(t, env)
	if len(titles) != 2 || titles[0] != "Dream Heist" {
		t.Fatalf("titles=%v", titles)
	}
	for _, title := range titles {
		if title == "Inception" {
			t.Fatalf("query movie returned in results: %v", titles)
		}
	}
}

func TestSimilar_DefaultK(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	_, env := do(t, srv, http.MethodGet, "/api/v1/similar?title=Inception")
	if got := len(resultTitles(t, env)); got != 3 {
		t.Fatalf("results=%d want 3", got)
	}
}

func TestSimilar_Posters(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	_, env := do(t, srv, http.MethodGet, "/api/v1/similar?title=Inception&k=2&posters=true")
	raw := env.Data["results"].([]any)
	first := raw[0].(map[string]any)
	p, ok := first["poster"].(map[string]any)
	if !ok || p["available"] != true || p["url"] != "https://img.example/dream.jpg" {
		t.Fatalf("poster=%#v", first["poster"])
	}
	second := raw[1].(map[string]any)["poster"].(map[string]any)
	if second["available"] != false {
		t.Fatalf("second poster=%#v", second)
	}
}

func TestSimilar_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec, env := do(t, srv, http.MethodGet, "/api/v1/similar?title=dream")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("error=%#v", env.Error)
	}
	details := env.Error.Details.(map[string]any)
	sugg := details["suggestions"].([]any)
	if len(sugg) != 1 || sugg[0] != "Dream Heist" {
		t.Fatalf("suggestions=%v", sugg)
	}
}

func TestSimilar_BadRequest(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	tests := []struct {
		target string
		code   string
	}{
		{"/api/v1/similar", "MISSING_TITLE"},
		{"/api/v1/similar?title=%20%20", "MISSING_TITLE"},
		{"/api/v1/similar?title=Inception&k=0", "INVALID_K"},
		{"/api/v1/similar?title=Inception&k=abc", "INVALID_K"},
		{"/api/v1/similar?title=Inception&k=101", "INVALID_K"},
	}
	for _, tt := range tests {
		rec, env := do(t, srv, http.MethodGet, tt.target)
		if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != tt.code {
			t.Errorf("%s: status=%d error=%#v", tt.target, rec.Code, env.Error)
		}
	}
}

func TestGenres(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	_, env := do(t, srv, http.MethodGet, "/api/v1/genres")
	raw := env.Data["genres"].([]any)
	want := []string{"Action", "Comedy", "Science Fiction", "Thriller"}
	if len(raw) != len(want) {
		t.Fatalf("genres=%v", raw)
	}
	for i := range want {
		if raw[i] != want[i] {
			t.Fatalf("genres=%v want %v", raw, want)
		}
	}
}

func TestMovies(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	_, env := do(t, srv, http.MethodGet, "/api/v1/movies?genre=science%20fiction,comedy&k=10")
	titles := resultTitles(t, env)
	want := []string{"Inception", "Cooking Show", "Space Odyssey"}
	if strings.Join(titles, "|") != strings.Join(want, "|") {
		t.Fatalf("titles=%v want %v", titles, want)
	}

	rec, env := do(t, srv, http.MethodGet, "/api/v1/movies")
	if rec.Code != http.StatusBadRequest || env.Error.Code != "MISSING_GENRE" {
		t.Fatalf("status=%d error=%#v", rec.Code, env.Error)
	}
}

func TestRebuild(t *testing.T) {
	rebuilt := append(testMovies(), catalog.Movie{Title: "Extra", Genres: []string{"Drama"}, Overview: "A quiet family drama."})
	srv, holder := newTestServer(t, func(context.Context) (*index.Index, error) {
		return index.Build(rebuilt)
	})
	before := holder.Current()

	rec, env := do(t, srv, http.MethodPost, "/api/v1/index/rebuild")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if env.Data["movies"].(float64) != 5 || holder.Current().Len() != 5 {
		t.Fatalf("rebuild did not swap: %v", env.Data)
	}
	if before.Len() != 4 {
		t.Fatalf("old index mutated: len=%d", before.Len())
	}
}

func TestRebuild_Failure(t *testing.T) {
	srv, holder := newTestServer(t, func(context.Context) (*index.Index, error) {
		return nil, errors.New("catalog unreadable")
	})
	before := holder.Current()
	rec, env := do(t, srv, http.MethodPost, "/api/v1/index/rebuild")
	if rec.Code != http.StatusInternalServerError || env.Error.Code != "REBUILD_FAILED" {
		t.Fatalf("status=%d error=%#v", rec.Code, env.Error)
	}
	if holder.Current() != before {
		t.Fatal("failed rebuild replaced the index")
	}
}

func TestRebuild_Unavailable(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec, _ := do(t, srv, http.MethodPost, "/api/v1/index/rebuild")
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	idx, err := index.Build(testMovies())
	if err != nil {
		t.Fatal(err)
	}
	h := NewHandler(index.NewHolder(idx), nil, nil, 3)
	srv := NewRouter(h, RouterConfig{RateLimitPerMinute: 2})
	for i := 0; i < 2; i++ {
		if rec, _ := do(t, srv, http.MethodGet, "/api/v1/genres"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d", i, rec.Code)
		}
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/genres", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d want 429", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	do(t, srv, http.MethodGet, "/api/v1/similar?title=Inception")
	rec, _ := do(t, srv, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "movierec_") {
		t.Fatalf("metrics status=%d", rec.Code)
	}
}
