package formats

import (
	"fmt"
	"strings"
	"time"

	"styledetect/internal/core/ports"
	"styledetect/internal/engine/styled"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	kindStyles = map[styled.TagKind]lipgloss.Style{
		styled.TagStyledCall:   lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		styled.TagStyledMember: lipgloss.NewStyle().Foreground(lipgloss.Color("#8B5CF6")),
		styled.TagCSS:          lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")),
	}
)

// GenerateText renders a terminal summary followed by one line per match.
func GenerateText(result ports.ScanResult) ([]byte, error) {
	var b strings.Builder

	matches := result.MatchCount()
	b.WriteString(titleStyle.Render(fmt.Sprintf("styledetect: %d files, %d matches, %d failures",
		len(result.Files), matches, len(result.Failures))))
	if result.Duration > 0 {
		b.WriteString(pathStyle.Render(fmt.Sprintf(" (%s)", result.Duration.Round(time.Millisecond))))
	}
	b.WriteString("\n")

	for _, file := range result.Files {
		path := relativeURI(result.ProjectRoot, file.Path)
		for _, m := range file.Matches() {
			b.WriteString(MatchLine(path, m))
			b.WriteString("\n")
		}
	}

	for _, f := range result.Failures {
		b.WriteString(failureStyle.Render("failed"))
		b.WriteString(" ")
		b.WriteString(pathStyle.Render(relativeURI(result.ProjectRoot, f.Path)))
		b.WriteString(": ")
		b.WriteString(f.Error)
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

// MatchLine formats one template as "path:line:col  kind  expr".
func MatchLine(path string, m styled.TemplateMatch) string {
	loc := pathStyle.Render(fmt.Sprintf("%s:%d:%d", path, m.Location.Line, m.Location.Column))
	kind := m.Kind.String()
	if style, ok := kindStyles[m.Kind]; ok {
		kind = style.Render(kind)
	}
	line := loc + "  " + kind
	if expr := describe(m); expr != "" {
		line += "  " + expr
	}
	return line
}

func describe(m styled.TemplateMatch) string {
	switch m.Kind {
	case styled.TagStyledCall:
		return fmt.Sprintf("%s(%s)", m.LocalName, m.Component)
	case styled.TagStyledMember:
		return fmt.Sprintf("%s.%s", m.LocalName, m.Component)
	case styled.TagNone:
		return m.Tag
	}
	return ""
}
