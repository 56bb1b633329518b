package helpers

import (
	"path/filepath"

	"styledetect/internal/shared/util"
)

func ResolveOutputPath(path, root string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func WriteArtifact(path string, content []byte) error {
	return util.WriteFileWithDirs(path, content, 0o644)
}
