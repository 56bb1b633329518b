package styled

import (
	"context"
	"time"

	"styledetect/internal/core/errors"
	"styledetect/internal/engine/parser"
	"styledetect/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TemplateMatch describes one classified tagged template.
type TemplateMatch struct {
	Kind          TagKind         `json:"kind"`
	Component     string          `json:"component,omitempty"`
	ComponentKind string          `json:"component_kind,omitempty"`
	Tag           string          `json:"tag"`
	Location      parser.Location `json:"location"`
	LocalName     string          `json:"local_name"`
}

type FileReport struct {
	Path            string          `json:"path"`
	Language        string          `json:"language"`
	LocalStyledName string          `json:"local_styled_name"`
	Templates       []TemplateMatch `json:"templates"`
}

// Matches returns the templates recognised as styled or css tags.
func (r *FileReport) Matches() []TemplateMatch {
	out := make([]TemplateMatch, 0, len(r.Templates))
	for _, m := range r.Templates {
		if m.Kind != TagNone {
			out = append(out, m)
		}
	}
	return out
}

// Analyzer runs the per-file pass: parse, build scopes, track the styled
// alias, then classify every tagged template.
type Analyzer struct {
	parser  *parser.Parser
	modules ModuleMatcher
	opts    Options
}

func NewAnalyzer(p *parser.Parser, modules ModuleMatcher, opts Options) *Analyzer {
	return &Analyzer{parser: p, modules: modules, opts: opts}
}

func (a *Analyzer) Options() Options {
	return a.opts
}

func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, content []byte) (*FileReport, error) {
	ctx, span := observability.Tracer.Start(ctx, "styled.AnalyzeFile", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	tree, err := a.parser.ParseFile(path, content)
	if err != nil {
		observability.FilesAnalyzedTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}
	defer tree.Close()
	observability.ParsingDuration.WithLabelValues(tree.Language).Observe(time.Since(start).Seconds())

	if tree.Root() == nil {
		observability.FilesAnalyzedTotal.WithLabelValues("error").Inc()
		return nil, errors.AddContext(errors.New(errors.CodeParseError, "empty syntax tree"), errors.CtxPath, path)
	}

	classifyStart := time.Now()
	report := a.analyzeTree(tree)
	observability.AnalysisDuration.WithLabelValues("classify").Observe(time.Since(classifyStart).Seconds())
	observability.FilesAnalyzedTotal.WithLabelValues("ok").Inc()

	span.SetAttributes(
		attribute.String("language", tree.Language),
		attribute.Int("templates", len(report.Templates)),
	)
	return report, nil
}

func (a *Analyzer) analyzeTree(tree *parser.Tree) *FileReport {
	root := tree.Root()
	scopes := parser.BuildScopes(tree)
	state := &FileState{}
	classifier := NewClassifier(tree, scopes, a.modules, a.opts)

	// Aliases must be known before the first template is classified, and an
	// import may follow its first use in source order.
	for i := uint(0); i < root.NamedChildCount(); i++ {
		if n := root.NamedChild(i); n != nil && parser.KindOf(n) == parser.KindImportStatement {
			TrackStyledAlias(tree, n, state, a.opts)
		}
	}

	report := &FileReport{
		Path:            tree.Path,
		Language:        tree.Language,
		LocalStyledName: state.LocalName(),
	}

	engine := parser.NewExtractorEngine(map[string]parser.NodeHandler{
		"call_expression": func(ctx *parser.ExtractionContext, node *sitter.Node) bool {
			if parser.KindOf(node) != parser.KindTaggedTemplate {
				return false
			}
			result := classifier.Classify(node, state)
			report.Templates = append(report.Templates, a.match(tree, node, result, state))
			return false
		},
	})
	engine.Walk(&parser.ExtractionContext{Tree: tree, Scopes: scopes}, root)
	return report
}

func (a *Analyzer) match(tree *parser.Tree, node *sitter.Node, result Classification, state *FileState) TemplateMatch {
	tag, _, _ := parser.TaggedTemplateParts(node)
	m := TemplateMatch{
		Kind:      result.Kind,
		Tag:       tree.Text(tag),
		Location:  tree.Location(node),
		LocalName: state.LocalName(),
	}
	if result.Component != nil {
		m.Component = result.Component.Value
		m.ComponentKind = result.Component.Kind.String()
	}
	return m
}
