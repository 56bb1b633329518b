package app

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"styledetect/internal/core/app/helpers"
	"styledetect/internal/core/config"
	"styledetect/internal/core/errors"
	"styledetect/internal/core/ports"
	"styledetect/internal/data/history"
	"styledetect/internal/engine/styled"
	"styledetect/internal/shared/observability"
	"styledetect/internal/shared/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Scan analyses every eligible file below paths, or below scan.paths when
// paths is empty, and records the run when a history store is configured.
func (a *App) Scan(ctx context.Context, req ports.ScanRequest) (ports.ScanResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Scan")
	defer span.End()

	start := time.Now()
	result := ports.ScanResult{
		RunID:       uuid.NewString(),
		ProjectRoot: a.Paths.ProjectRoot,
		StartedAt:   start.UTC(),
	}

	paths := req.Paths
	if len(paths) == 0 {
		paths = a.Config.Scan.Paths
	}
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		roots = append(roots, config.ResolveRelative(a.cwd, p))
	}

	files, err := a.ScanDirectories(helpers.UniqueScanRoots(roots))
	if err != nil {
		return result, err
	}

	// Resolution results are only valid for one pass over the tree.
	a.origins.Reset()

	reports, failures, err := a.analyzeFiles(ctx, files)
	if err != nil {
		return result, err
	}
	result.Files = reports
	result.Failures = failures
	result.Duration = time.Since(start)

	a.reportsMu.Lock()
	a.reports = make(map[string]*styled.FileReport, len(reports))
	for _, r := range reports {
		a.reports[r.Path] = r
	}
	a.reportsMu.Unlock()

	observability.AnalysisDuration.WithLabelValues("scan").Observe(result.Duration.Seconds())
	span.SetAttributes(
		attribute.Int("files", len(result.Files)),
		attribute.Int("failures", len(result.Failures)),
		attribute.Int("matches", result.MatchCount()),
	)

	if err := a.persistRun(result); err != nil {
		slog.Warn("failed to persist scan history", "run_id", result.RunID, "error", err)
	}
	return result, nil
}

// ScanDirectories lists the analysable files below roots, sorted.
func (a *App) ScanDirectories(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "scan path"), errors.CtxPath, root)
		}
		if !info.IsDir() {
			if a.eligible(root) && !seen[root] {
				seen[root] = true
				files = append(files, root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && helpers.MatchAny(a.excludeDirs, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if a.eligible(path) && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// eligible applies the language, test-file, exclude and ignore filters.
func (a *App) eligible(path string) bool {
	if !a.parser.IsSupportedPath(path) {
		return false
	}
	if !a.Config.Scan.IncludeTests && a.parser.IsTestFile(path) {
		return false
	}
	if helpers.MatchAny(a.excludeFiles, filepath.Base(path)) {
		return false
	}
	a.reloadMu.RLock()
	ignore := a.ignore
	a.reloadMu.RUnlock()
	if len(ignore) > 0 {
		rel := util.RelativeSlashPath(a.Paths.ProjectRoot, path)
		if helpers.MatchAny(ignore, rel) {
			return false
		}
	}
	return true
}

func (a *App) analyzeFiles(ctx context.Context, files []string) ([]*styled.FileReport, []ports.FileFailure, error) {
	type outcome struct {
		report *styled.FileReport
		err    error
	}
	outcomes := make([]outcome, len(files))

	workers := a.Config.Scan.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := a.analyzeFile(gctx, path)
			outcomes[i] = outcome{report: report, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	reports := make([]*styled.FileReport, 0, len(files))
	var failures []ports.FileFailure
	for i, o := range outcomes {
		if o.err != nil {
			slog.Warn("failed to analyze file", "path", files[i], "error", o.err)
			failures = append(failures, ports.FileFailure{Path: files[i], Error: o.err.Error()})
			continue
		}
		reports = append(reports, o.report)
	}
	return reports, failures, nil
}

func (a *App) analyzeFile(ctx context.Context, path string) (*styled.FileReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read source"), errors.CtxPath, path)
	}
	a.reloadMu.RLock()
	analyzer := a.analyzer
	a.reloadMu.RUnlock()
	return analyzer.AnalyzeFile(ctx, path, content)
}

// CheckFile analyses a single file regardless of the scan filters.
func (a *App) CheckFile(ctx context.Context, path string) (*styled.FileReport, error) {
	abs, err := filepath.Abs(config.ResolveRelative(a.cwd, path))
	if err != nil {
		return nil, err
	}
	return a.analyzeFile(ctx, abs)
}

func (a *App) persistRun(result ports.ScanResult) error {
	if a.history == nil {
		return nil
	}
	rec := a.runRecord(result)
	return a.history.SaveRun(rec.Run, rec.Matches)
}

func (a *App) runRecord(result ports.ScanResult) ports.RunRecord {
	matches := make([]history.Match, 0)
	for _, report := range result.Files {
		rel := util.RelativeSlashPath(a.Paths.ProjectRoot, report.Path)
		for _, m := range report.Matches() {
			matches = append(matches, history.Match{
				Path:      rel,
				Line:      m.Location.Line,
				Column:    m.Location.Column,
				Kind:      m.Kind.String(),
				Component: m.Component,
				LocalName: m.LocalName,
			})
		}
	}
	return ports.RunRecord{
		Run: history.Run{
			ID:         result.RunID,
			ProjectKey: a.ProjectKey(),
			Timestamp:  result.StartedAt,
			Files:      len(result.Files),
			Matches:    len(matches),
			Failures:   len(result.Failures),
		},
		Matches: matches,
	}
}

// ProjectKey names the project in the history store.
func (a *App) ProjectKey() string {
	return filepath.Base(a.Paths.ProjectRoot)
}
