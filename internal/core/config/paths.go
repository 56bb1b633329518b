package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot string
	DBPath      string
	OutputPath  string
}

// ResolvePaths anchors the relative paths of cfg at the project root, which
// is paths.project_root or the nearest ancestor of a scan path holding a
// project marker.
func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	projectRoot := cfg.Paths.ProjectRoot
	if projectRoot != "" {
		projectRoot = ResolveRelative(cwd, projectRoot)
	} else {
		candidates := make([]string, 0, len(cfg.Scan.Paths)+1)
		for _, p := range cfg.Scan.Paths {
			candidates = append(candidates, ResolveRelative(cwd, p))
		}
		root, err := DetectProjectRoot(append(candidates, cwd))
		if err != nil {
			return ResolvedPaths{}, err
		}
		projectRoot = root
	}

	resolved := ResolvedPaths{
		ProjectRoot: filepath.Clean(projectRoot),
		DBPath:      ResolveRelative(projectRoot, cfg.DB.Path),
	}
	if cfg.Output.Path != "" {
		resolved.OutputPath = ResolveRelative(projectRoot, cfg.Output.Path)
	}
	return resolved, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

func DetectProjectRoot(candidates []string) (string, error) {
	markers := []string{DefaultFile, "package.json", ".git"}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}

		for {
			for _, marker := range markers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root), nil
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}
