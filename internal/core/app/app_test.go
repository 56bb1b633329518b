package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"styledetect/internal/core/config"
	"styledetect/internal/core/ports"
	"styledetect/internal/engine/styled"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buttonSource = `import { styled as S } from '@linaria/react';
import { css } from '@linaria/core';

const base = css` + "`color: red;`" + `;
export const Button = S.button` + "`padding: 0;`" + `;
export const Fancy = S(Button)` + "`margin: 0;`" + `;
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	real, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	return real
}

func newTestApp(t *testing.T, root string, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.ProjectRoot = root
	cfg.Scan.Workers = 2
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, config.Validate(cfg))
	a, err := New(cfg, root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func kindsOf(report *styled.FileReport) []styled.TagKind {
	out := make([]styled.TagKind, 0, len(report.Templates))
	for _, m := range report.Templates {
		out = append(out, m.Kind)
	}
	return out
}

func TestScan_ClassifiesProject(t *testing.T) {
	root := writeProject(t, map[string]string{
		"package.json":              `{"name":"demo"}`,
		"src/Button.jsx":            buttonSource,
		"src/Button.test.jsx":       buttonSource,
		"src/plain.ts":              "export const n: number = 1;\n",
		"src/notes.md":              "# not source\n",
		"node_modules/lib/index.js": buttonSource,
		"legacy/Old.js":             buttonSource,
		"src/unrelated.js":          "import { css } from 'unrelated-lib';\nconst x = css`a: b;`;\n",
	})
	a := newTestApp(t, root, func(cfg *config.Config) {
		cfg.Ignore = []string{"legacy/**"}
	})

	result, err := a.Scan(t.Context(), ports.ScanRequest{})
	require.NoError(t, err)

	require.NotEmpty(t, result.RunID)
	assert.Equal(t, root, result.ProjectRoot)
	assert.Empty(t, result.Failures)

	paths := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		filepath.Join(root, "src", "Button.jsx"),
		filepath.Join(root, "src", "plain.ts"),
		filepath.Join(root, "src", "unrelated.js"),
	}, paths)

	assert.Equal(t, []styled.TagKind{styled.TagCSS, styled.TagStyledMember, styled.TagStyledCall}, kindsOf(result.Files[0]))
	assert.Equal(t, "S", result.Files[0].LocalStyledName)
	assert.Equal(t, []styled.TagKind{styled.TagNone}, kindsOf(result.Files[2]))
	assert.Equal(t, 3, result.MatchCount())
}

func TestScan_IncludeTestsAndExplicitPaths(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/Button.jsx":      buttonSource,
		"src/Button.test.jsx": buttonSource,
		"other/Card.tsx":      buttonSource,
	})
	a := newTestApp(t, root, func(cfg *config.Config) {
		cfg.Scan.IncludeTests = true
	})

	result, err := a.Scan(t.Context(), ports.ScanRequest{Paths: []string{"src"}})
	require.NoError(t, err)
	require.Len(t, result.Files, 2)
	assert.Equal(t, filepath.Join(root, "src", "Button.test.jsx"), result.Files[1].Path)
}

func TestScan_ResolvesEquivalentSpecifiers(t *testing.T) {
	root := writeProject(t, map[string]string{
		"node_modules/@linaria/react/package.json": `{"name":"@linaria/react","main":"lib/index.js"}`,
		"node_modules/@linaria/react/lib/index.js": "exports.styled = () => {};\n",
		"src/App.js": "import { styled } from '../node_modules/@linaria/react/lib/index.js';\n" +
			"const Box = styled.div`display: flex;`;\n",
	})
	a := newTestApp(t, root, func(cfg *config.Config) {
		cfg.Exclude.Dirs = []string{"node_modules"}
	})

	result, err := a.Scan(t.Context(), ports.ScanRequest{})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.Len(t, result.Files[0].Templates, 1)
	assert.Equal(t, styled.TagStyledMember, result.Files[0].Templates[0].Kind)
	assert.Equal(t, "div", result.Files[0].Templates[0].Component)
}

func TestScan_RecordsFailures(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/ok.js": buttonSource,
	})
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.js"), filepath.Join(root, "src", "broken.js")))
	a := newTestApp(t, root, nil)

	result, err := a.Scan(t.Context(), ports.ScanRequest{})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, filepath.Join(root, "src", "broken.js"), result.Failures[0].Path)
}

func TestScan_MissingPath(t *testing.T) {
	root := writeProject(t, map[string]string{"a.js": ""})
	a := newTestApp(t, root, nil)

	_, err := a.Scan(t.Context(), ports.ScanRequest{Paths: []string{"does-not-exist"}})
	require.Error(t, err)
}

func TestScan_PersistsHistory(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/Button.jsx": buttonSource,
	})
	a := newTestApp(t, root, func(cfg *config.Config) {
		cfg.DB.Enabled = true
	})
	require.NotNil(t, a.HistoryStore())

	result, err := a.Scan(t.Context(), ports.ScanRequest{})
	require.NoError(t, err)

	runs, err := a.HistoryStore().LoadRuns(filepath.Base(root), time.Time{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].ID)
	assert.Equal(t, 3, runs[0].Matches)

	matches, err := a.HistoryStore().LoadMatches(result.RunID)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "src/Button.jsx", matches[0].Path)
	assert.Equal(t, "css", matches[0].Kind)
}

func TestCheckFile(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/Button.test.jsx": buttonSource,
	})
	a := newTestApp(t, root, nil)

	report, err := a.CheckFile(t.Context(), "src/Button.test.jsx")
	require.NoError(t, err)
	assert.Len(t, report.Templates, 3)

	_, err = a.CheckFile(t.Context(), "src/missing.jsx")
	require.Error(t, err)
}

func TestHandleChanges(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/Button.jsx": buttonSource,
		"src/Card.jsx":   "export const x = 1;\n",
	})
	a := newTestApp(t, root, nil)

	_, err := a.Scan(t.Context(), ports.ScanRequest{})
	require.NoError(t, err)

	var (
		mu      sync.Mutex
		updates []ports.WatchUpdate
	)
	a.SetUpdateHandler(func(u ports.WatchUpdate) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, u)
	})

	card := filepath.Join(root, "src", "Card.jsx")
	require.NoError(t, os.WriteFile(card, []byte("import { css } from 'linaria';\nconst c = css`x: y;`;\n"), 0o644))
	button := filepath.Join(root, "src", "Button.jsx")
	require.NoError(t, os.Remove(button))

	a.HandleChanges([]string{button, card})

	mu.Lock()
	require.Len(t, updates, 1)
	u := updates[0]
	mu.Unlock()

	assert.Equal(t, []string{card}, u.Changed)
	assert.Equal(t, []string{button}, u.Removed)
	assert.Equal(t, 1, u.FileCount)
	assert.Equal(t, 1, u.Matches)
	require.Len(t, u.Reports, 1)
	assert.Equal(t, styled.TagCSS, u.Reports[0].Templates[0].Kind)

	current := a.CurrentReports()
	require.Len(t, current, 1)
	assert.Equal(t, card, current[0].Path)
}

func TestHandleChanges_ManifestRescansKnownFiles(t *testing.T) {
	root := writeProject(t, map[string]string{
		"package.json":   `{"name":"demo"}`,
		"src/Button.jsx": buttonSource,
	})
	a := newTestApp(t, root, nil)

	_, err := a.Scan(t.Context(), ports.ScanRequest{})
	require.NoError(t, err)

	var got ports.WatchUpdate
	a.SetUpdateHandler(func(u ports.WatchUpdate) { got = u })
	a.HandleChanges([]string{filepath.Join(root, "package.json")})

	assert.Equal(t, []string{filepath.Join(root, "src", "Button.jsx")}, got.Changed)
	assert.Equal(t, 3, got.Matches)
}

func TestHealthService(t *testing.T) {
	root := writeProject(t, map[string]string{"src/a.js": buttonSource})
	a := newTestApp(t, root, nil)

	_, err := a.Scan(t.Context(), ports.ScanRequest{})
	require.NoError(t, err)

	health := NewHealthService(a)
	status := health.Check(t.Context())
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, "1 files", status.Components["reports"])
	assert.Contains(t, status.Components["parser"], "ok")

	components := health.Components(t.Context())
	assert.Equal(t, "up", components["status"])

	a.Config.DB.Enabled = true
	assert.Equal(t, "degraded", health.Check(t.Context()).Status)
}

func TestNew_RejectsBadIgnorePattern(t *testing.T) {
	root := writeProject(t, map[string]string{"a.js": ""})
	cfg := config.Default()
	cfg.Paths.ProjectRoot = root
	cfg.Ignore = []string{"[oops"}
	_, err := New(cfg, root)
	require.Error(t, err)
}

func TestReload_AppliesImportMap(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/theme.js": "import { css } from 'house-css';\nconst x = css`a: b;`;\n",
	})
	a := newTestApp(t, root, nil)

	result, err := a.Scan(t.Context(), ports.ScanRequest{})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, []styled.TagKind{styled.TagNone}, kindsOf(result.Files[0]))

	var got ports.WatchUpdate
	a.SetUpdateHandler(func(u ports.WatchUpdate) { got = u })

	next := config.Default()
	next.ImportMap.CSS = append(next.ImportMap.CSS, "house-css")
	require.NoError(t, a.Reload(next))

	assert.Equal(t, 1, got.Matches)
	reports := a.CurrentReports()
	require.Len(t, reports, 1)
	assert.Equal(t, []styled.TagKind{styled.TagCSS}, kindsOf(reports[0]))
	assert.Contains(t, a.Config.ImportMap.CSS, "house-css")
}

func TestReload_RejectsBadIgnorePattern(t *testing.T) {
	root := writeProject(t, map[string]string{"a.js": ""})
	a := newTestApp(t, root, nil)

	next := config.Default()
	next.Ignore = []string{"[oops"}
	require.Error(t, a.Reload(next))
}

func TestHandleChanges_IgnoresPathsOutsideScanRoots(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/Button.jsx": buttonSource,
		"other/Card.jsx": buttonSource,
		"srcx/Extra.jsx": buttonSource,
	})
	a := newTestApp(t, root, func(cfg *config.Config) {
		cfg.Scan.Paths = []string{"src"}
	})

	var got ports.WatchUpdate
	a.SetUpdateHandler(func(u ports.WatchUpdate) { got = u })
	a.HandleChanges([]string{
		filepath.Join(root, "other", "Card.jsx"),
		filepath.Join(root, "src", "Button.jsx"),
		filepath.Join(root, "srcx", "Extra.jsx"),
	})

	assert.Equal(t, []string{filepath.Join(root, "src", "Button.jsx")}, got.Changed)
	assert.Equal(t, 1, got.FileCount)
}
