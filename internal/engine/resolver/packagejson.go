package resolver

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

type packageJSON struct {
	fields  map[string]json.RawMessage
	exports json.RawMessage
}

func readPackageJSON(dir string) (*packageJSON, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false
	}
	return &packageJSON{fields: fields, exports: fields["exports"]}, true
}

// field returns a top-level string field such as "main" or "module".
func (p *packageJSON) field(name string) string {
	raw, ok := p.fields[name]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func (p *packageJSON) hasExports() bool {
	trimmed := bytes.TrimSpace(p.exports)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// resolveExport maps a package subpath ("." or "./x") through the "exports"
// field. Condition objects are matched in key order against conditions.
func (p *packageJSON) resolveExport(subpath string, conditions map[string]bool) (string, bool) {
	entries, isObject := orderedObject(p.exports)
	if isObject && len(entries) > 0 && strings.HasPrefix(entries[0].key, ".") {
		for _, e := range entries {
			if e.key == subpath {
				return resolveExportTarget(e.value, "", conditions)
			}
		}
		bestKey, bestMatch := "", ""
		var bestValue json.RawMessage
		for _, e := range entries {
			star := strings.Index(e.key, "*")
			if star < 0 {
				continue
			}
			prefix, suffix := e.key[:star], e.key[star+1:]
			if !strings.HasPrefix(subpath, prefix) || !strings.HasSuffix(subpath, suffix) || len(subpath) < len(prefix)+len(suffix) {
				continue
			}
			if len(prefix) > len(bestKey) || bestKey == "" {
				bestKey = e.key
				bestMatch = subpath[len(prefix) : len(subpath)-len(suffix)]
				bestValue = e.value
			}
		}
		if bestKey != "" {
			return resolveExportTarget(bestValue, bestMatch, conditions)
		}
		return "", false
	}

	if subpath != "." {
		return "", false
	}
	return resolveExportTarget(p.exports, "", conditions)
}

func resolveExportTarget(raw json.RawMessage, match string, conditions map[string]bool) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var target string
		if err := json.Unmarshal(raw, &target); err != nil || !strings.HasPrefix(target, "./") {
			return "", false
		}
		if match != "" {
			target = strings.ReplaceAll(target, "*", match)
		}
		return target, true
	case '[':
		var alternatives []json.RawMessage
		if err := json.Unmarshal(raw, &alternatives); err != nil {
			return "", false
		}
		for _, alt := range alternatives {
			if target, ok := resolveExportTarget(alt, match, conditions); ok {
				return target, true
			}
		}
	case '{':
		entries, _ := orderedObject(raw)
		for _, e := range entries {
			if e.key != "default" && !conditions[e.key] {
				continue
			}
			if target, ok := resolveExportTarget(e.value, match, conditions); ok {
				return target, true
			}
		}
	}
	return "", false
}

type jsonEntry struct {
	key   string
	value json.RawMessage
}

// orderedObject decodes a JSON object preserving key order, which decides
// condition priority in "exports".
func orderedObject(raw json.RawMessage) ([]jsonEntry, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}

	var entries []jsonEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		entries = append(entries, jsonEntry{key: key, value: value})
	}
	return entries, true
}
