package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestDefaultConfig_Valid(t *testing.T) {
	withHome(t)
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestSaveLoad_RoundTripAndDefaults(t *testing.T) {
	home := withHome(t)
	if err := os.MkdirAll(filepath.Join(home, ".movierec"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, _ := DefaultConfig()
	cfg.TopN = 10
	cfg.Posters.Timeout = 3 * time.Second
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TopN != 10 || got.Posters.Timeout != 3*time.Second {
		t.Fatalf("unexpected config: %+v", got)
	}
}

func TestLoadFile_PartialFileKeepsDefaults(t *testing.T) {
	home := withHome(t)
	p := filepath.Join(t.TempDir(), "movierec.yaml")
	body := "catalog_path: ~/data/movies.csv\nposters:\n  timeout: 2s\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.CatalogPath != filepath.Join(home, "data", "movies.csv") {
		t.Fatalf("~ not expanded: %q", cfg.CatalogPath)
	}
	if cfg.TopN != 5 {
		t.Fatalf("top_n default lost: %d", cfg.TopN)
	}
	if cfg.Posters.Timeout != 2*time.Second {
		t.Fatalf("timeout=%v", cfg.Posters.Timeout)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	withHome(t)
	p := filepath.Join(t.TempDir(), "movierec.yaml")
	if err := os.WriteFile(p, []byte("top_n: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(p); err == nil {
		t.Fatalf("expected validation error for top_n=0")
	}
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	withHome(t)
	if _, err := Load(); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	cfg, err := LoadOrDefault()
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.TopN != 5 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}
