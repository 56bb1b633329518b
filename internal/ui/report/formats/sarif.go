package formats

import (
	"encoding/json"
	"fmt"

	"styledetect/internal/core/ports"
	"styledetect/internal/engine/styled"
	"styledetect/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDStyledCall   = "STY001"
	ruleIDStyledMember = "STY002"
	ruleIDCSS          = "STY003"
	ruleIDFileFailure  = "STY900"
)

// sarifReport is the top-level SARIF document.
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

var sarifRules = map[string]sarifRule{
	ruleIDStyledCall: {
		ID:               ruleIDStyledCall,
		Name:             "StyledComponentCall",
		ShortDescription: sarifMessage{Text: "Tagged template whose tag calls styled with a component."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "note"},
	},
	ruleIDStyledMember: {
		ID:               ruleIDStyledMember,
		Name:             "StyledIntrinsicElement",
		ShortDescription: sarifMessage{Text: "Tagged template whose tag is a styled.<element> access."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "note"},
	},
	ruleIDCSS: {
		ID:               ruleIDCSS,
		Name:             "CSSTemplate",
		ShortDescription: sarifMessage{Text: "Tagged template using the css tag."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "note"},
	},
	ruleIDFileFailure: {
		ID:               ruleIDFileFailure,
		Name:             "FileNotAnalyzed",
		ShortDescription: sarifMessage{Text: "A source file could not be read or parsed."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
	},
}

// GenerateSARIF builds a SARIF v2.1.0 document from a scan result. File URIs
// are made relative to the project root of the scan.
func GenerateSARIF(result ports.ScanResult) ([]byte, error) {
	root := result.ProjectRoot
	results := make([]sarifResult, 0)
	used := make(map[string]bool)

	for _, file := range result.Files {
		for _, m := range file.Matches() {
			ruleID := ruleForKind(m.Kind)
			used[ruleID] = true
			results = append(results, sarifResult{
				RuleID:    ruleID,
				Level:     "note",
				Message:   sarifMessage{Text: matchMessage(m)},
				Locations: []sarifLocation{fileLocation(root, file.Path, m.Location.Line, m.Location.Column)},
			})
		}
	}

	for _, f := range result.Failures {
		used[ruleIDFileFailure] = true
		results = append(results, sarifResult{
			RuleID:    ruleIDFileFailure,
			Level:     "error",
			Message:   sarifMessage{Text: fmt.Sprintf("File could not be analyzed: %s", f.Error)},
			Locations: []sarifLocation{fileLocation(root, f.Path, 0, 0)},
		})
	}

	rules := make([]sarifRule, 0, len(used))
	for _, id := range []string{ruleIDStyledCall, ruleIDStyledMember, ruleIDCSS, ruleIDFileFailure} {
		if used[id] {
			rules = append(rules, sarifRules[id])
		}
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "styledetect",
						Version: version.Version,
						Rules:   rules,
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}

func ruleForKind(kind styled.TagKind) string {
	switch kind {
	case styled.TagStyledCall:
		return ruleIDStyledCall
	case styled.TagStyledMember:
		return ruleIDStyledMember
	default:
		return ruleIDCSS
	}
}

func matchMessage(m styled.TemplateMatch) string {
	switch m.Kind {
	case styled.TagStyledCall:
		return fmt.Sprintf("%s(%s) styled component", m.LocalName, m.Component)
	case styled.TagStyledMember:
		return fmt.Sprintf("%s.%s styled element", m.LocalName, m.Component)
	default:
		return "css template"
	}
}

func fileLocation(root, path string, line, column int) sarifLocation {
	loc := sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{
				URI:       relativeURI(root, path),
				URIBaseID: "%SRCROOT%",
			},
		},
	}
	if line > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{StartLine: line, StartColumn: column}
	}
	return loc
}
