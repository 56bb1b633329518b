package config

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not
// exist and required is false.
func LoadOrDefault(path string, required bool) (*Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if !required && errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	return nil, false, err
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.ImportMap.CSS) == 0 {
		cfg.ImportMap.CSS = []string{"@linaria/core", "linaria"}
	}
	if len(cfg.ImportMap.Styled) == 0 {
		cfg.ImportMap.Styled = []string{"@linaria/react", "linaria/react"}
	}

	if len(cfg.Scan.Paths) == 0 {
		cfg.Scan.Paths = []string{"."}
	}
	if cfg.Scan.Workers <= 0 {
		cfg.Scan.Workers = runtime.NumCPU()
	}
	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{".git", "node_modules", "dist", "build"}
	}

	if len(cfg.Resolver.Extensions) == 0 {
		cfg.Resolver.Extensions = []string{".js", ".json", ".node", ".mjs", ".cjs", ".jsx", ".ts", ".tsx"}
	}
	if len(cfg.Resolver.MainFields) == 0 {
		cfg.Resolver.MainFields = []string{"main"}
	}
	if len(cfg.Resolver.Conditions) == 0 {
		cfg.Resolver.Conditions = []string{"require", "node", "default"}
	}
	if cfg.Resolver.CacheSize <= 0 {
		cfg.Resolver.CacheSize = 4096
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if cfg.Watch.MaxRescansPerSecond == 0 {
		cfg.Watch.MaxRescansPerSecond = 2
	}

	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "text"
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = ".styledetect/history.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = "127.0.0.1:9464"
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "styledetect"
	}
}

func normalize(cfg *Config) {
	cfg.ImportMap.CSS = trimAll(cfg.ImportMap.CSS)
	cfg.ImportMap.Styled = trimAll(cfg.ImportMap.Styled)
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Output.Path = strings.TrimSpace(cfg.Output.Path)
	cfg.Paths.ProjectRoot = strings.TrimSpace(cfg.Paths.ProjectRoot)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
