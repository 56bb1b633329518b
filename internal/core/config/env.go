package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "STYLEDETECT_"

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: STYLEDETECT_[SECTION]_[KEY] (e.g., STYLEDETECT_OUTPUT_FORMAT).
// List values are comma separated.
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Paths.ProjectRoot, "PATHS_PROJECT_ROOT")

	setEnvList(&cfg.ImportMap.CSS, "IMPORT_MAP_CSS")
	setEnvList(&cfg.ImportMap.Styled, "IMPORT_MAP_STYLED")

	setEnvList(&cfg.Scan.Paths, "SCAN_PATHS")
	setEnvBool(&cfg.Scan.IncludeTests, "SCAN_INCLUDE_TESTS")
	setEnvInt(&cfg.Scan.Workers, "SCAN_WORKERS")

	setEnvInt(&cfg.Resolver.CacheSize, "RESOLVER_CACHE_SIZE")

	setEnvDuration(&cfg.Watch.Debounce, "WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.MaxRescansPerSecond, "WATCH_MAX_RESCANS_PER_SECOND")

	setEnvString(&cfg.Output.Format, "OUTPUT_FORMAT")
	setEnvString(&cfg.Output.Path, "OUTPUT_PATH")

	setEnvBool(&cfg.DB.Enabled, "DB_ENABLED")
	setEnvString(&cfg.DB.Path, "DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "DB_BUSY_TIMEOUT")

	setEnvBool(&cfg.Observability.Enabled, "OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Address, "OBSERVABILITY_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "OBSERVABILITY_ENABLE_TRACING")
	setEnvString(&cfg.Observability.ServiceName, "OBSERVABILITY_SERVICE_NAME")

	normalize(cfg)
}

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(envPrefix + key)
}

func logOverride(key, val string) {
	slog.Info("applying env override", "key", envPrefix+key, "value", val)
}

func setEnvString(target *string, key string) {
	if val, ok := lookupEnv(key); ok {
		logOverride(key, val)
		*target = val
	}
}

func setEnvList(target *[]string, key string) {
	if val, ok := lookupEnv(key); ok {
		if list := trimAll(strings.Split(val, ",")); len(list) > 0 {
			logOverride(key, val)
			*target = list
		}
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := lookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			logOverride(key, val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := lookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			logOverride(key, val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := lookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			logOverride(key, val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := lookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			logOverride(key, val)
			*target = d
		}
	}
}
