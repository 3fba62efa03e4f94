package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/kk-code-lab/notefind/internal/config"
	"github.com/kk-code-lab/notefind/internal/search"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	testChdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	want := filepath.Join(tempHome, ".config", "notefind", "config.toml")
	if resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.Search.Mode != "exact" {
		t.Fatalf("unexpected default mode: %q", cfg.Search.Mode)
	}
	if cfg.Search.FuzzyThreshold != 0.4 {
		t.Fatalf("unexpected fuzzy threshold: %v", cfg.Search.FuzzyThreshold)
	}
	if cfg.SaveDebounce() != time.Second {
		t.Fatalf("unexpected debounce: %v", cfg.SaveDebounce())
	}
	if !cfg.Editor.Watch {
		t.Fatal("expected watch enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	testChdir(t, dir)

	content := `
[search]
case_sensitive = true
mode = "Fuzzy"
fuzzy_threshold = 0.25

[editor]
save_debounce_ms = 250
watch = false

[logging]
format = "JSON"
level = "debug"
file = "logs/notefind.log"
`
	if err := os.WriteFile(filepath.Join(dir, "notefind.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "notefind.toml" {
		t.Fatalf("expected project config, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Search.Mode != "fuzzy" || !cfg.Search.CaseSensitive || cfg.Search.FuzzyThreshold != 0.25 {
		t.Fatalf("unexpected search section: %+v", cfg.Search)
	}
	if cfg.SaveDebounce() != 250*time.Millisecond || cfg.Editor.Watch {
		t.Fatalf("unexpected editor section: %+v", cfg.Editor)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized json format, got %q", cfg.Logging.Format)
	}
	if !filepath.IsAbs(cfg.Logging.File) || !strings.HasSuffix(cfg.Logging.File, filepath.Join("logs", "notefind.log")) {
		t.Fatalf("expected absolute log file path, got %q", cfg.Logging.File)
	}

	sc := cfg.SearchConfig("agenda")
	if sc.Mode() != search.ModeFuzzy || !sc.CaseSensitive || sc.Query != "agenda" {
		t.Fatalf("unexpected search config: %+v", sc)
	}
}

func TestLoadExplicitMissingPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg == nil {
		t.Fatal("expected default config")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"mode", "[search]\nmode = \"soundex\"\n", "search.mode"},
		{"threshold", "[search]\nfuzzy_threshold = 1.5\n", "fuzzy_threshold"},
		{"format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"level", "[logging]\nlevel = \"trace\"\n", "logging.level"},
		{"unknown key", "[search]\nspeed = 3\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Search.Mode = "regex"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode encoded config: %v", err)
	}
	if decoded != cfg {
		t.Fatalf("round trip mismatch: got %+v want %+v", decoded, cfg)
	}
}

// testChdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func testChdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		t.Setenv("PWD", abs)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
