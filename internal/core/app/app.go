package app

import (
	"fmt"
	"log/slog"
	"sync"

	"styledetect/internal/core/app/helpers"
	"styledetect/internal/core/config"
	"styledetect/internal/core/ports"
	"styledetect/internal/core/watcher"
	"styledetect/internal/data/history"
	"styledetect/internal/engine/parser"
	"styledetect/internal/engine/resolver"
	"styledetect/internal/engine/styled"

	"github.com/gobwas/glob"
)

// App wires configuration, parsing, module resolution and classification
// into the scan and watch use cases.
type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths
	cwd    string

	parser  *parser.Parser
	origins *resolver.OriginResolver
	history ports.HistoryStore

	// analyzer and ignore change on config reload.
	reloadMu     sync.RWMutex
	analyzer     ports.FileAnalyzer
	ignore       []glob.Glob
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob

	updateMu sync.RWMutex
	onUpdate func(ports.WatchUpdate)

	// Latest report per file, kept for watch-mode deltas.
	reportsMu sync.RWMutex
	reports   map[string]*styled.FileReport

	activeWatcher *watcher.Watcher
	writer        *historyWriter
}

// New builds an App from a validated config. cwd anchors relative paths.
func New(cfg *config.Config, cwd string) (*App, error) {
	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		return nil, err
	}

	registry, err := buildParserRegistry(cfg)
	if err != nil {
		return nil, err
	}
	loader, err := parser.NewGrammarLoaderWithRegistry(registry)
	if err != nil {
		return nil, err
	}
	p := parser.NewParser(loader)

	nodeResolver := resolver.NewNodeResolver(resolver.Options{
		Extensions: cfg.Resolver.Extensions,
		MainFields: cfg.Resolver.MainFields,
		Conditions: cfg.Resolver.Conditions,
	})
	origins := resolver.NewOriginResolver(nodeResolver, cfg.Resolver.CacheSize)

	a := &App{
		Config:   cfg,
		Paths:    paths,
		cwd:      cwd,
		parser:   p,
		origins:  origins,
		analyzer: styled.NewAnalyzer(p, origins, analyzerOptions(cfg)),
		reports:  make(map[string]*styled.FileReport),
	}

	if a.excludeDirs, err = helpers.CompileGlobs(cfg.Exclude.Dirs, "exclude dir"); err != nil {
		return nil, err
	}
	if a.excludeFiles, err = helpers.CompileGlobs(cfg.Exclude.Files, "exclude file"); err != nil {
		return nil, err
	}
	if a.ignore, err = helpers.CompilePathGlobs(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	if cfg.DB.Enabled {
		store, err := history.Open(paths.DBPath, cfg.DB.BusyTimeout)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.history = store
		slog.Debug("history store opened", "path", paths.DBPath)
	}

	return a, nil
}

func analyzerOptions(cfg *config.Config) styled.Options {
	return styled.Options{ImportMap: styled.ImportMap{
		CSS:    append([]string(nil), cfg.ImportMap.CSS...),
		Styled: append([]string(nil), cfg.ImportMap.Styled...),
	}}
}

// Reload applies the import map and ignore patterns of cfg, then re-analyses
// every known file. Other settings need a restart.
func (a *App) Reload(cfg *config.Config) error {
	ignore, err := helpers.CompilePathGlobs(cfg.Ignore, "ignore")
	if err != nil {
		return err
	}

	a.reloadMu.Lock()
	a.analyzer = styled.NewAnalyzer(a.parser, a.origins, analyzerOptions(cfg))
	a.ignore = ignore
	a.Config.ImportMap = cfg.ImportMap
	a.Config.Ignore = cfg.Ignore
	a.reloadMu.Unlock()

	known := make([]string, 0)
	for _, r := range a.CurrentReports() {
		known = append(known, r.Path)
	}
	slog.Info("configuration applied", "files", len(known))
	if len(known) > 0 {
		a.HandleChanges(known)
	}
	return nil
}

func buildParserRegistry(cfg *config.Config) (map[string]parser.LanguageSpec, error) {
	overrides := make(map[string]parser.LanguageOverride, len(cfg.Languages))
	for name, lang := range cfg.Languages {
		overrides[name] = parser.LanguageOverride{
			Enabled:    lang.Enabled,
			Extensions: append([]string(nil), lang.Extensions...),
		}
	}
	return parser.BuildLanguageRegistry(overrides)
}

// SetHistoryStore replaces the run store. Passing nil disables persistence.
func (a *App) SetHistoryStore(store ports.HistoryStore) {
	a.history = store
}

func (a *App) HistoryStore() ports.HistoryStore {
	return a.history
}

func (a *App) SetUpdateHandler(handler func(ports.WatchUpdate)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) emitUpdate(update ports.WatchUpdate) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(update)
	}
}

// Close stops the watcher and releases the history store.
func (a *App) Close() error {
	var firstErr error
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			firstErr = err
		}
		a.activeWatcher = nil
	}
	if a.writer != nil {
		a.writer.close()
		a.writer = nil
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.history = nil
	}
	return firstErr
}
