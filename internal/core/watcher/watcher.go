package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"styledetect/internal/shared/observability"
	"styledetect/internal/shared/util"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// Options configures which paths the watcher reports and how often.
type Options struct {
	Debounce     time.Duration
	ExcludeDirs  []string
	ExcludeFiles []string
	// Extensions of source files to report. package.json is always reported
	// since it changes module resolution.
	Extensions          []string
	TestSuffixes        []string
	IncludeTests        bool
	MaxRescansPerSecond float64
}

// Watcher reports batches of changed source paths after a quiet period.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	debounce     time.Duration
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	extFilters   map[string]bool
	testSuffixes []string
	includeTests bool
	limiter      *util.Limiter
	onChange     func([]string)
	callbackMu   sync.Mutex

	pending   map[string]struct{}
	pendingMu sync.Mutex
	timer     *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

func NewWatcher(opts Options, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}
	excludeDirs, err := compile(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compile(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:    fsw,
		debounce:     opts.Debounce,
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
		extFilters:   make(map[string]bool, len(opts.Extensions)),
		includeTests: opts.IncludeTests,
		limiter:      util.NewLimiter(opts.MaxRescansPerSecond, 1),
		onChange:     onChange,
		pending:      make(map[string]struct{}),
	}
	for _, ext := range opts.Extensions {
		if ext = strings.ToLower(strings.TrimSpace(ext)); ext != "" {
			w.extFilters[ext] = true
		}
	}
	for _, suffix := range opts.TestSuffixes {
		if suffix = strings.ToLower(strings.TrimSpace(suffix)); suffix != "" {
			w.testSuffixes = append(w.testSuffixes, suffix)
		}
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	return w, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Watch registers every non-excluded directory below paths and starts
// delivering events.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if err := w.watchRecursive(path); err != nil {
			return err
		}
	}
	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldExcludeDir(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if w.shouldExcludeDir(event.Name) {
						continue
					}
					if err := w.watchRecursive(event.Name); err != nil {
						slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						continue
					}
					w.enqueueExistingFiles(event.Name)
					continue
				}
			}

			if w.shouldExcludeFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()

	if !w.limiter.Allow(1) {
		observability.RescansThrottledTotal.Inc()
		if err := w.limiter.Wait(w.ctx, 1); err != nil {
			return
		}
	}

	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	w.onChange(paths)
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if base == "package.json" {
		return false
	}

	if !w.includeTests {
		for _, suffix := range w.testSuffixes {
			if strings.HasSuffix(base, suffix) {
				return true
			}
		}
	}
	if len(w.extFilters) > 0 && !w.extFilters[filepath.Ext(base)] {
		return true
	}
	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	w.cancel()
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !w.shouldExcludeFile(path) {
			w.scheduleChange(path)
		}
		return nil
	})
}
