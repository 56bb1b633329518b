package helpers

import (
	"fmt"
	"path/filepath"
	"sort"

	"styledetect/internal/shared/util"

	"github.com/gobwas/glob"
)

// CompileGlobs compiles patterns matched against base names.
func CompileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// CompilePathGlobs compiles patterns matched against slash-separated paths,
// so "*" stops at a directory boundary and "**" crosses it. Patterns are
// normalized first, so "./legacy/**" means "legacy/**".
func CompilePathGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		normalized := util.NormalizePatternPath(p)
		if normalized == "" {
			continue
		}
		g, err := glob.Compile(normalized, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// MatchAny reports whether any glob matches s.
func MatchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// UniqueScanRoots returns the absolute, de-duplicated and sorted form of paths.
func UniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		normalized := filepath.Clean(p)
		if abs, err := filepath.Abs(normalized); err == nil {
			normalized = filepath.Clean(abs)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		roots = append(roots, normalized)
	}
	sort.Strings(roots)
	return roots
}
