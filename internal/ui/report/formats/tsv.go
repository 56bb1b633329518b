package formats

import (
	"fmt"
	"strings"

	"styledetect/internal/core/ports"
)

// GenerateTSV writes one row per recognised template and per failed file.
func GenerateTSV(result ports.ScanResult) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Type\tFile\tLine\tColumn\tKind\tComponent\tLocalName\n")
	for _, file := range result.Files {
		path := relativeURI(result.ProjectRoot, file.Path)
		for _, m := range file.Matches() {
			buf.WriteString(fmt.Sprintf("match\t%s\t%d\t%d\t%s\t%s\t%s\n",
				escapeField(path),
				m.Location.Line,
				m.Location.Column,
				m.Kind,
				escapeField(m.Component),
				escapeField(m.LocalName),
			))
		}
	}
	for _, f := range result.Failures {
		buf.WriteString(fmt.Sprintf("failure\t%s\t0\t0\t\t%s\t\n",
			escapeField(relativeURI(result.ProjectRoot, f.Path)),
			escapeField(f.Error),
		))
	}

	return []byte(buf.String()), nil
}
