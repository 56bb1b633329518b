package formats

import (
	"encoding/json"

	"styledetect/internal/core/ports"
)

// GenerateJSON renders the scan result as indented JSON. Paths stay
// absolute so the output can be fed back to other tools unchanged.
func GenerateJSON(result ports.ScanResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
