package config

import (
	"time"
)

// DefaultFile is the config file looked up when --config is not given.
const DefaultFile = "styledetect.toml"

type Config struct {
	Version       int                 `toml:"version"`
	Paths         Paths               `toml:"paths"`
	ImportMap     ImportMap           `toml:"import_map"`
	Scan          Scan                `toml:"scan"`
	Exclude       Exclude             `toml:"exclude"`
	Ignore        []string            `toml:"ignore"`
	Languages     map[string]Language `toml:"languages"`
	Resolver      Resolver            `toml:"resolver"`
	Watch         Watch               `toml:"watch"`
	Output        Output              `toml:"output"`
	DB            Database            `toml:"db"`
	Observability Observability       `toml:"observability"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
}

// ImportMap lists the module specifiers that provide the css and styled
// tags. Forks and renamed packages are added here.
type ImportMap struct {
	CSS    []string `toml:"css"`
	Styled []string `toml:"styled"`
}

type Scan struct {
	Paths        []string `toml:"paths"`
	IncludeTests bool     `toml:"include_tests"`
	Workers      int      `toml:"workers"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
}

type Resolver struct {
	Extensions []string `toml:"extensions"`
	MainFields []string `toml:"main_fields"`
	Conditions []string `toml:"conditions"`
	CacheSize  int      `toml:"cache_size"`
}

type Watch struct {
	Debounce            time.Duration `toml:"debounce"`
	MaxRescansPerSecond float64       `toml:"max_rescans_per_second"`
}

type Output struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Address       string `toml:"address"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
	ServiceName   string `toml:"service_name"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// OutputFormats lists the report formats accepted by output.format.
var OutputFormats = []string{"text", "json", "sarif", "tsv"}
