package formats

import (
	"path/filepath"
	"strings"
)

// relativeURI converts an absolute file path to a forward-slash relative URI
// anchored at projectRoot. If the path is already relative, lies outside the
// root, or projectRoot is empty, the path is returned with forward slashes.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		rel, err := filepath.Rel(projectRoot, filePath)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			filePath = rel
		}
	}
	return filepath.ToSlash(filePath)
}

// escapeField keeps one record per line in tab-separated output.
func escapeField(s string) string {
	r := strings.NewReplacer("\t", `\t`, "\n", `\n`, "\r", `\r`)
	return r.Replace(s)
}
