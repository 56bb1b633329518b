package util

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// NormalizePatternPath cleans and normalizes paths for matcher/pattern usage.
func NormalizePatternPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// HasPathPrefix returns true when path equals prefix or is contained within prefix.
func HasPathPrefix(path, prefix string) bool {
	path = NormalizePatternPath(path)
	prefix = NormalizePatternPath(prefix)
	if path == "" || prefix == "" {
		return path == prefix
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// RelativeSlashPath returns p relative to root with forward slashes, or p
// unchanged when it lies outside root.
func RelativeSlashPath(root, p string) string {
	if root == "" {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// WriteFileWithDirs creates parent directories (0755) and writes the file with perm.
func WriteFileWithDirs(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, perm)
}
