// Package report renders scan results in the supported output formats.
package report

import (
	"fmt"
	"strings"

	"styledetect/internal/core/ports"
	"styledetect/internal/ui/report/formats"
)

type writerFunc func(ports.ScanResult) ([]byte, error)

func (f writerFunc) Write(result ports.ScanResult) ([]byte, error) {
	return f(result)
}

var writers = map[string]writerFunc{
	"text":  formats.GenerateText,
	"json":  formats.GenerateJSON,
	"sarif": formats.GenerateSARIF,
	"tsv":   formats.GenerateTSV,
}

// NewWriter returns the writer for format.
func NewWriter(format string) (ports.ReportWriter, error) {
	w, ok := writers[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return w, nil
}

// Render is NewWriter followed by Write.
func Render(format string, result ports.ScanResult) ([]byte, error) {
	w, err := NewWriter(format)
	if err != nil {
		return nil, err
	}
	return w.Write(result)
}
