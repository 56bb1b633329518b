package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

var knownLanguages = []string{"javascript", "typescript", "tsx"}

// Validate checks a decoded config after defaults were applied.
func Validate(cfg *Config) error {
	validators := []func(*Config) error{
		validateVersion,
		validateImportMap,
		validateScan,
		validatePatterns,
		validateLanguages,
		validateResolver,
		validateWatch,
		validateOutput,
		validateDatabase,
		validateObservability,
	}
	for _, validate := range validators {
		if err := validate(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateImportMap(cfg *Config) error {
	for name, specifiers := range map[string][]string{"css": cfg.ImportMap.CSS, "styled": cfg.ImportMap.Styled} {
		if len(specifiers) == 0 {
			return fmt.Errorf("import_map.%s must list at least one module", name)
		}
		seen := make(map[string]bool, len(specifiers))
		for _, spec := range specifiers {
			if seen[spec] {
				return fmt.Errorf("import_map.%s repeats module %q", name, spec)
			}
			seen[spec] = true
		}
	}
	return nil
}

func validateScan(cfg *Config) error {
	for i, p := range cfg.Scan.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("scan.paths[%d] must not be empty", i)
		}
	}
	return nil
}

func validatePatterns(cfg *Config) error {
	groups := []struct {
		label    string
		patterns []string
	}{
		{"exclude.dirs", cfg.Exclude.Dirs},
		{"exclude.files", cfg.Exclude.Files},
		{"ignore", cfg.Ignore},
	}
	for _, group := range groups {
		for _, pattern := range group.patterns {
			if strings.TrimSpace(pattern) == "" {
				return fmt.Errorf("%s must not include empty patterns", group.label)
			}
			if _, err := glob.Compile(pattern, '/'); err != nil {
				return fmt.Errorf("invalid %s pattern %q: %w", group.label, pattern, err)
			}
		}
	}
	return nil
}

func validateLanguages(cfg *Config) error {
	for language, settings := range cfg.Languages {
		if !slices.Contains(knownLanguages, language) {
			return fmt.Errorf("languages.%s is not supported; expected one of: %s", language, strings.Join(knownLanguages, ", "))
		}
		for _, ext := range settings.Extensions {
			if strings.TrimSpace(ext) == "" {
				return fmt.Errorf("languages.%s.extensions must not include empty values", language)
			}
		}
	}
	return nil
}

func validateResolver(cfg *Config) error {
	for _, ext := range cfg.Resolver.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("resolver.extensions entry %q must start with a dot", ext)
		}
	}
	for _, field := range cfg.Resolver.MainFields {
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("resolver.main_fields must not include empty values")
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.MaxRescansPerSecond < 0 {
		return fmt.Errorf("watch.max_rescans_per_second must not be negative")
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if !slices.Contains(OutputFormats, cfg.Output.Format) {
		return fmt.Errorf("output.format must be one of: %s", strings.Join(OutputFormats, ", "))
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if cfg.DB.Enabled && strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty when db.enabled=true")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if !cfg.Observability.Enabled {
		return nil
	}
	if !strings.Contains(cfg.Observability.Address, ":") {
		return fmt.Errorf("observability.address must be host:port, got %q", cfg.Observability.Address)
	}
	return nil
}
