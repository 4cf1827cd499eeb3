package cmd

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kamusis/movierec/internal/config"
)

const testCatalog = `genres,original_title,overview
"[{""id"": 28, ""name"": ""Action""}]",Inception,A thief steals corporate secrets through dream sharing technology.
"[{""id"": 53, ""name"": ""Thriller""}]",Dream Heist,A thief steals corporate secrets through dream sharing.
"[{""id"": 35, ""name"": ""Comedy""}]",Cooking Show,A chef opens a restaurant in Paris.
"[{""id"": 878, ""name"": ""Science Fiction""}, {""id"": 28, ""name"": ""Action""}]",Space Odyssey,Astronauts travel to Jupiter with a sentient computer.
`

// setupHome points HOME at a temp dir holding a catalog and returns its config.
func setupHome(t *testing.T) *config.Config {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MOVIEREC_POSTER_PROVIDER", "")
	t.Setenv("MOVIEREC_SERPAPI_API_KEY", "")

	path := filepath.Join(home, "movies.csv")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	flagCatalog = path
	t.Cleanup(func() { flagCatalog = "" })

	cfg, err := loadSettings()
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	return cfg
}

// captureOutput redirects the print helpers for the duration of the test.
func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &errOut
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })
	return &out, &errOut
}

func TestLoadSettings_CatalogFlag(t *testing.T) {
	cfg := setupHome(t)
	if filepath.Base(cfg.CatalogPath) != "movies.csv" {
		t.Fatalf("catalog flag not applied: %s", cfg.CatalogPath)
	}
	if cfg.TopN != 5 {
		t.Fatalf("expected default top_n, got %d", cfg.TopN)
	}
}

func TestLoadIndex_MissingCatalog(t *testing.T) {
	cfg := setupHome(t)
	cfg.CatalogPath = filepath.Join(t.TempDir(), "nope.csv")
	if _, err := loadIndex(cfg); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}

func TestShowSimilar(t *testing.T) {
	cfg := setupHome(t)
	idx, err := loadIndex(cfg)
	if err != nil {
		t.Fatalf("loadIndex: %v", err)
	}
	out, _ := captureOutput(t)

	if err := showSimilar(idx, nil, "  INCEPTION ", 2, true); err != nil {
		t.Fatalf("showSimilar: %v", err)
	}
	got := out.String()
	if strings.Contains(got, "poster:") {
		t.Fatalf("posters printed without a resolver:\n%s", got)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if n := len(lines); n != 3 {
		t.Fatalf("expected header plus 2 results, got %d lines:\n%s", n, got)
	}
	if !strings.Contains(lines[1], "Dream Heist") {
		t.Fatalf("expected Dream Heist first:\n%s", got)
	}
	if strings.Contains(lines[1], "Inception") || strings.Contains(lines[2], "Inception") {
		t.Fatalf("query movie listed in results:\n%s", got)
	}
}

func TestShowSimilar_UnknownTitle(t *testing.T) {
	cfg := setupHome(t)
	idx, err := loadIndex(cfg)
	if err != nil {
		t.Fatalf("loadIndex: %v", err)
	}
	out, _ := captureOutput(t)

	if err := showSimilar(idx, nil, "dream", 3, false); err != nil {
		t.Fatalf("unknown title should not be an error, got %v", err)
	}
	got := out.String()
	if !strings.Contains(got, `movie "dream" not found`) || !strings.Contains(got, "Did you mean") || !strings.Contains(got, "Dream Heist") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestShowSimilar_InvalidK(t *testing.T) {
	cfg := setupHome(t)
	idx, err := loadIndex(cfg)
	if err != nil {
		t.Fatalf("loadIndex: %v", err)
	}
	captureOutput(t)
	if err := showSimilar(idx, nil, "Inception", 0, false); err == nil {
		t.Fatal("expected error for k=0")
	}
}

func TestShowGenreMovies(t *testing.T) {
	cfg := setupHome(t)
	movies, err := loadCatalog(cfg)
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	out, _ := captureOutput(t)

	showGenreMovies(movies, nil, []string{"action"}, 5)
	got := out.String()
	if !strings.Contains(got, "1. Inception (Action)") || !strings.Contains(got, "2. Space Odyssey (Science Fiction, Action)") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if strings.Contains(got, "Cooking Show") {
		t.Fatalf("non-matching movie listed:\n%s", got)
	}

	out.Reset()
	showGenreMovies(movies, nil, []string{"Western"}, 5)
	if !strings.Contains(out.String(), "no movies match") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestShowGenreList(t *testing.T) {
	cfg := setupHome(t)
	movies, err := loadCatalog(cfg)
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	out, _ := captureOutput(t)

	showGenreList(movies)
	got := out.String()
	if !strings.Contains(got, "Genres (4)") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if strings.Index(got, "Action") > strings.Index(got, "Thriller") {
		t.Fatalf("genres not sorted:\n%s", got)
	}
}

func TestOpenResolver_NoProvider(t *testing.T) {
	cfg := setupHome(t)
	captureOutput(t)
	r, closeFn, err := openResolver(cfg)
	if err != nil {
		t.Fatalf("openResolver: %v", err)
	}
	defer closeFn()
	if r.Enabled() {
		t.Fatal("resolver should be disabled without a provider")
	}
	ps := resolvePosters(r, []string{"Inception"})
	if len(ps) != 1 || ps[0].Available || posterLabel(ps[0]) != "poster not found" {
		t.Fatalf("unexpected posters: %+v", ps)
	}
}

func TestOpenResolver_MissingKey(t *testing.T) {
	cfg := setupHome(t)
	t.Setenv("MOVIEREC_POSTER_PROVIDER", "serpapi")
	if _, _, err := openResolver(cfg); err == nil {
		t.Fatal("expected error when the SerpAPI key is missing")
	}
}

func TestRunInit(t *testing.T) {
	setupHome(t)
	captureOutput(t)
	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load after init: %v", err)
	}
	if filepath.Base(cfg.CatalogPath) != "movies.csv" {
		t.Fatalf("init did not record --catalog: %s", cfg.CatalogPath)
	}
	envPath, _ := config.DotEnvPath()
	if _, err := os.Stat(envPath); err != nil {
		t.Fatalf(".env template missing: %v", err)
	}

	// Second run keeps the existing config.
	out, _ := captureOutput(t)
	if err := runInit(nil, nil); err != nil {
		t.Fatalf("second runInit: %v", err)
	}
	if !strings.Contains(out.String(), "Config already exists") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRunDoctor(t *testing.T) {
	setupHome(t)
	out, _ := captureOutput(t)
	if err := runDoctor(nil, nil); err != nil {
		t.Fatalf("runDoctor: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "4 of 4 rows usable") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestSetupLogging_InvalidFormat(t *testing.T) {
	setupHome(t)
	flagLogFormat = "xml"
	t.Cleanup(func() { flagLogFormat = "" })
	if err := setupLogging(nil, nil); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

func TestWaitForShutdown_ServerError(t *testing.T) {
	captureOutput(t)
	srv := &http.Server{}

	errCh := make(chan error, 1)
	errCh <- errors.New("address already in use")
	if err := waitForShutdown(srv, errCh, func() {}); err == nil || !strings.Contains(err.Error(), "address already in use") {
		t.Fatalf("expected wrapped listen error, got %v", err)
	}

	errCh <- http.ErrServerClosed
	if err := waitForShutdown(srv, errCh, func() {}); err != nil {
		t.Fatalf("ErrServerClosed should be a clean exit, got %v", err)
	}
}
