package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"styledetect/internal/core/app/helpers"
	"styledetect/internal/core/config"
	"styledetect/internal/core/ports"
	"styledetect/internal/core/watcher"
	"styledetect/internal/engine/styled"
	"styledetect/internal/shared/observability"
	"styledetect/internal/shared/util"

	"github.com/google/uuid"
)

// StartWatcher watches scan.paths and re-analyses changed files.
func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(watcher.Options{
		Debounce:            a.Config.Watch.Debounce,
		ExcludeDirs:         a.Config.Exclude.Dirs,
		ExcludeFiles:        a.Config.Exclude.Files,
		Extensions:          a.parser.SupportedExtensions(),
		TestSuffixes:        a.parser.SupportedTestFileSuffixes(),
		IncludeTests:        a.Config.Scan.IncludeTests,
		MaxRescansPerSecond: a.Config.Watch.MaxRescansPerSecond,
	}, a.HandleChanges)
	if err != nil {
		return err
	}

	if err := w.Watch(a.scanRoots()); err != nil {
		_ = w.Close()
		return err
	}
	a.activeWatcher = w
	if a.history != nil && a.writer == nil {
		a.writer = startHistoryWriter(a.history)
	}
	return nil
}

// HandleChanges re-analyses the changed paths. A changed package.json can
// alter how any specifier resolves, so it triggers a rescan of every file
// seen so far.
func (a *App) HandleChanges(paths []string) {
	slog.Info("detected changes", "count", len(paths))
	start := time.Now()

	// Files on disk changed, so earlier resolutions may be stale.
	a.origins.Reset()

	targets := make(map[string]bool, len(paths))
	manifestChanged := false
	roots := a.scanRoots()
	for _, path := range paths {
		if filepath.Base(path) == "package.json" {
			manifestChanged = true
			continue
		}
		if !withinRoots(path, roots) {
			slog.Debug("ignoring change outside scan roots", "path", path)
			continue
		}
		targets[path] = true
	}
	if manifestChanged {
		a.reportsMu.RLock()
		for path := range a.reports {
			targets[path] = true
		}
		a.reportsMu.RUnlock()
	}

	update := ports.WatchUpdate{Timestamp: start.UTC()}
	ctx := context.Background()
	for _, path := range util.SortedStringKeys(targets) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.reportsMu.Lock()
			delete(a.reports, path)
			a.reportsMu.Unlock()
			update.Removed = append(update.Removed, path)
			continue
		}
		if !a.eligible(path) {
			continue
		}

		report, err := a.analyzeFile(ctx, path)
		if err != nil {
			slog.Warn("failed to re-analyze file", "path", path, "error", err)
			update.Failures = append(update.Failures, ports.FileFailure{Path: path, Error: err.Error()})
			continue
		}
		a.reportsMu.Lock()
		a.reports[path] = report
		a.reportsMu.Unlock()
		update.Changed = append(update.Changed, path)
		update.Reports = append(update.Reports, report)
	}

	snapshot := a.CurrentReports()
	update.FileCount = len(snapshot)
	for _, r := range snapshot {
		update.Matches += len(r.Matches())
	}

	observability.AnalysisDuration.WithLabelValues("watch").Observe(time.Since(start).Seconds())
	slog.Info("rescan complete",
		"changed", len(update.Changed),
		"removed", len(update.Removed),
		"failures", len(update.Failures),
		"matches", update.Matches,
		"duration", time.Since(start),
	)

	if len(update.Changed) > 0 || len(update.Removed) > 0 {
		result := ports.ScanResult{
			RunID:       uuid.NewString(),
			ProjectRoot: a.Paths.ProjectRoot,
			StartedAt:   update.Timestamp,
			Duration:    time.Since(start),
			Files:       snapshot,
			Failures:    update.Failures,
		}
		if a.writer != nil {
			a.writer.enqueue(a.runRecord(result))
		} else if err := a.persistRun(result); err != nil {
			slog.Warn("failed to persist watch history", "error", err)
		}
	}
	a.emitUpdate(update)
}

// scanRoots returns the configured scan paths anchored at the working directory.
func (a *App) scanRoots() []string {
	roots := make([]string, 0, len(a.Config.Scan.Paths))
	for _, p := range a.Config.Scan.Paths {
		roots = append(roots, config.ResolveRelative(a.cwd, p))
	}
	return helpers.UniqueScanRoots(roots)
}

func withinRoots(path string, roots []string) bool {
	for _, root := range roots {
		if util.HasPathPrefix(path, root) {
			return true
		}
	}
	return false
}

// CurrentReports returns the latest report of every known file, sorted by path.
func (a *App) CurrentReports() []*styled.FileReport {
	a.reportsMu.RLock()
	defer a.reportsMu.RUnlock()
	out := make([]*styled.FileReport, 0, len(a.reports))
	for _, path := range util.SortedStringKeys(a.reports) {
		out = append(out, a.reports[path])
	}
	return out
}
