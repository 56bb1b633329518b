package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
version = 1
ignore = ["**/*.stories.tsx"]

[import_map]
css = ["@acme/css"]
styled = [" @acme/styled ", "@linaria/react"]

[scan]
paths = ["./src"]
include_tests = true
workers = 3

[exclude]
dirs = [".git", "vendor"]
files = ["*.min.js"]

[languages.tsx]
enabled = false

[resolver]
extensions = [".ts", ".js"]
cache_size = 16

[watch]
debounce = "1s"
max_rescans_per_second = 5.5

[output]
format = "SARIF"
path = "out/report.sarif"

[db]
enabled = true
path = "history.db"

[observability]
enabled = true
address = "127.0.0.1:9999"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.ImportMap.CSS) != 1 || cfg.ImportMap.CSS[0] != "@acme/css" {
		t.Errorf("unexpected css import map %v", cfg.ImportMap.CSS)
	}
	if cfg.ImportMap.Styled[0] != "@acme/styled" {
		t.Errorf("expected trimmed styled specifier, got %q", cfg.ImportMap.Styled[0])
	}
	if !cfg.Scan.IncludeTests || cfg.Scan.Workers != 3 || cfg.Scan.Paths[0] != "./src" {
		t.Errorf("unexpected scan section %+v", cfg.Scan)
	}
	if cfg.Languages["tsx"].Enabled == nil || *cfg.Languages["tsx"].Enabled {
		t.Error("expected tsx to be disabled")
	}
	if cfg.Resolver.CacheSize != 16 || len(cfg.Resolver.Extensions) != 2 {
		t.Errorf("unexpected resolver section %+v", cfg.Resolver)
	}
	if cfg.Watch.Debounce != time.Second || cfg.Watch.MaxRescansPerSecond != 5.5 {
		t.Errorf("unexpected watch section %+v", cfg.Watch)
	}
	if cfg.Output.Format != "sarif" {
		t.Errorf("expected normalized sarif format, got %q", cfg.Output.Format)
	}
	if !cfg.DB.Enabled || cfg.DB.BusyTimeout != 5*time.Second {
		t.Errorf("unexpected db section %+v", cfg.DB)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if strings.Join(cfg.ImportMap.CSS, ",") != "@linaria/core,linaria" {
		t.Errorf("unexpected default css map %v", cfg.ImportMap.CSS)
	}
	if strings.Join(cfg.ImportMap.Styled, ",") != "@linaria/react,linaria/react" {
		t.Errorf("unexpected default styled map %v", cfg.ImportMap.Styled)
	}
	if cfg.Output.Format != "text" || cfg.Scan.Workers <= 0 || cfg.Resolver.CacheSize <= 0 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.DB.Enabled {
		t.Error("history must be opt-in")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad version":      "version = 3",
		"bad format":       "[output]\nformat = \"xml\"",
		"unknown language": "[languages.python]\nenabled = true",
		"bad glob":         "ignore = [\"[abc\"]",
		"empty ignore":     "ignore = [\"\"]",
		"duplicate css":    "[import_map]\ncss = [\"a\", \"a\"]",
		"bad extension":    "[resolver]\nextensions = [\"ts\"]",
		"negative rate":    "[watch]\nmax_rescans_per_second = -1.0",
		"bad metrics addr": "[observability]\nenabled = true\naddress = \"nowhere\"",
		"malformed toml":   "version = ",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Fatalf("expected error for %q", content)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.toml")

	cfg, found, err := LoadOrDefault(missing, false)
	if err != nil || found || cfg == nil {
		t.Fatalf("expected defaults for a missing optional file, got %v %v %v", cfg, found, err)
	}
	if _, _, err := LoadOrDefault(missing, true); err == nil {
		t.Fatal("expected error for a missing required file")
	}

	cfg, found, err = LoadOrDefault(writeConfig(t, "[output]\nformat = \"json\""), true)
	if err != nil || !found || cfg.Output.Format != "json" {
		t.Fatalf("unexpected result %v %v %v", cfg, found, err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("STYLEDETECT_IMPORT_MAP_STYLED", "@acme/styled, @linaria/react")
	t.Setenv("STYLEDETECT_OUTPUT_FORMAT", "JSON")
	t.Setenv("STYLEDETECT_DB_ENABLED", "true")
	t.Setenv("STYLEDETECT_SCAN_WORKERS", "not-a-number")
	t.Setenv("STYLEDETECT_WATCH_DEBOUNCE", "2s")

	cfg := Default()
	workers := cfg.Scan.Workers
	ApplyEnvOverrides(cfg)

	if strings.Join(cfg.ImportMap.Styled, ",") != "@acme/styled,@linaria/react" {
		t.Errorf("unexpected styled map %v", cfg.ImportMap.Styled)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected json format, got %q", cfg.Output.Format)
	}
	if !cfg.DB.Enabled {
		t.Error("expected db enabled")
	}
	if cfg.Scan.Workers != workers {
		t.Error("invalid integer override must be ignored")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected 2s debounce, got %v", cfg.Watch.Debounce)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("overridden config should validate: %v", err)
	}
}

func TestResolvePaths(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "package.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(root, "src", "components")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Scan.Paths = []string{src}
	cfg.Output.Path = "reports/out.json"

	paths, err := ResolvePaths(cfg, src)
	if err != nil {
		t.Fatal(err)
	}
	if paths.ProjectRoot != filepath.Clean(root) {
		t.Errorf("expected project root %s, got %s", root, paths.ProjectRoot)
	}
	if paths.DBPath != filepath.Join(root, ".styledetect", "history.db") {
		t.Errorf("unexpected db path %s", paths.DBPath)
	}
	if paths.OutputPath != filepath.Join(root, "reports", "out.json") {
		t.Errorf("unexpected output path %s", paths.OutputPath)
	}

	cfg.Paths.ProjectRoot = "/abs/root"
	paths, err = ResolvePaths(cfg, src)
	if err != nil {
		t.Fatal(err)
	}
	if paths.ProjectRoot != filepath.Clean("/abs/root") {
		t.Errorf("explicit project root ignored: %s", paths.ProjectRoot)
	}

	if _, err := ResolvePaths(cfg, " "); err == nil {
		t.Error("expected error for empty cwd")
	}
}

func TestWatcher_Reload(t *testing.T) {
	path := writeConfig(t, "[output]\nformat = \"text\"")

	reloaded := make(chan *Config, 4)
	w := NewWatcher(path, func(cfg *Config) { reloaded <- cfg })
	if err := w.Start(t.Context()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("[output]\nformat = \"json\""), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Output.Format != "json" {
			t.Fatalf("expected reloaded json format, got %q", cfg.Output.Format)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
