// Package resolver implements Node-style module resolution for JavaScript and
// TypeScript sources and the module-identity comparisons built on top of it.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"styledetect/internal/core/errors"
)

var (
	DefaultExtensions = []string{".js", ".json", ".node", ".mjs", ".cjs", ".jsx", ".ts", ".tsx"}
	DefaultMainFields = []string{"main"}
	DefaultConditions = []string{"require", "node", "default"}
)

type Options struct {
	Extensions []string
	MainFields []string
	Conditions []string
}

// NodeResolver follows the require.resolve algorithm: core modules, then
// file and directory loading for relative or absolute specifiers, then the
// node_modules directories of every ancestor of the requesting directory.
type NodeResolver struct {
	extensions []string
	mainFields []string
	conditions map[string]bool
}

func NewNodeResolver(opts Options) *NodeResolver {
	r := &NodeResolver{
		extensions: opts.Extensions,
		mainFields: opts.MainFields,
		conditions: make(map[string]bool),
	}
	if len(r.extensions) == 0 {
		r.extensions = DefaultExtensions
	}
	if len(r.mainFields) == 0 {
		r.mainFields = DefaultMainFields
	}
	conditions := opts.Conditions
	if len(conditions) == 0 {
		conditions = DefaultConditions
	}
	for _, c := range conditions {
		r.conditions[c] = true
	}
	return r
}

// Resolve returns the absolute, symlink-free path of the module specifier
// requested from fromDir, or "node:<name>" for core modules.
func (r *NodeResolver) Resolve(specifier, fromDir string) (string, error) {
	if specifier == "" {
		return "", resolutionError(specifier, fromDir, "empty specifier")
	}
	if name, ok := builtinModule(specifier); ok {
		return "node:" + name, nil
	}

	var (
		resolved string
		err      error
	)
	switch {
	case isPathSpecifier(specifier):
		base := specifier
		if !filepath.IsAbs(base) {
			base = filepath.Join(fromDir, filepath.FromSlash(specifier))
		}
		resolved, err = r.loadPath(base, strings.HasSuffix(specifier, "/"))
	case strings.HasPrefix(specifier, "#"):
		return "", resolutionError(specifier, fromDir, "package imports are not supported")
	default:
		resolved, err = r.loadNodeModules(specifier, fromDir)
	}
	if err != nil {
		return "", err
	}
	return canonicalPath(resolved)
}

func (r *NodeResolver) loadPath(base string, dirOnly bool) (string, error) {
	if !dirOnly {
		if p, ok := r.loadAsFile(base); ok {
			return p, nil
		}
	}
	if p, ok := r.loadAsDirectory(base); ok {
		return p, nil
	}
	return "", resolutionError(base, "", "cannot find module")
}

func (r *NodeResolver) loadNodeModules(specifier, fromDir string) (string, error) {
	name, subpath := splitPackageSpecifier(specifier)
	if name == "" {
		return "", resolutionError(specifier, fromDir, "invalid package specifier")
	}

	dir, err := filepath.Abs(fromDir)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeResolutionFailed, "absolute path")
	}
	for {
		if filepath.Base(dir) != "node_modules" {
			modulesDir := filepath.Join(dir, "node_modules")
			pkgDir := filepath.Join(modulesDir, filepath.FromSlash(name))

			if pkg, ok := readPackageJSON(pkgDir); ok && pkg.hasExports() {
				target, matched := pkg.resolveExport(subpath, r.conditions)
				if !matched {
					return "", resolutionError(specifier, fromDir, fmt.Sprintf("subpath %q is not exported by %s", subpath, name))
				}
				full := filepath.Join(pkgDir, filepath.FromSlash(target))
				if isFile(full) {
					return full, nil
				}
				return "", resolutionError(specifier, fromDir, fmt.Sprintf("exported target %q does not exist", target))
			}

			full := filepath.Join(modulesDir, filepath.FromSlash(specifier))
			if p, ok := r.loadAsFile(full); ok {
				return p, nil
			}
			if p, ok := r.loadAsDirectory(full); ok {
				return p, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", resolutionError(specifier, fromDir, "cannot find module")
}

func (r *NodeResolver) loadAsFile(p string) (string, bool) {
	if isFile(p) {
		return p, true
	}
	for _, ext := range r.extensions {
		if isFile(p + ext) {
			return p + ext, true
		}
	}
	return "", false
}

func (r *NodeResolver) loadIndex(dir string) (string, bool) {
	for _, ext := range r.extensions {
		candidate := filepath.Join(dir, "index"+ext)
		if isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (r *NodeResolver) loadAsDirectory(dir string) (string, bool) {
	if pkg, ok := readPackageJSON(dir); ok {
		for _, field := range r.mainFields {
			main := pkg.field(field)
			if main == "" {
				continue
			}
			target := filepath.Join(dir, filepath.FromSlash(main))
			if p, ok := r.loadAsFile(target); ok {
				return p, true
			}
			if p, ok := r.loadIndex(target); ok {
				return p, true
			}
		}
	}
	return r.loadIndex(dir)
}

func isPathSpecifier(s string) bool {
	return s == "." || s == ".." ||
		strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") ||
		strings.HasPrefix(s, "/") || filepath.IsAbs(s)
}

// splitPackageSpecifier splits "@scope/pkg/a/b" into "@scope/pkg" and "./a/b".
func splitPackageSpecifier(s string) (name, subpath string) {
	parts := strings.Split(s, "/")
	n := 1
	if strings.HasPrefix(s, "@") {
		if len(parts) < 2 || parts[1] == "" {
			return "", ""
		}
		n = 2
	}
	if len(parts) < n || parts[0] == "" {
		return "", ""
	}
	name = strings.Join(parts[:n], "/")
	subpath = "."
	if rest := parts[n:]; len(rest) > 0 {
		subpath = "./" + strings.Join(rest, "/")
	}
	return name, subpath
}

func canonicalPath(p string) (string, error) {
	if strings.HasPrefix(p, "node:") {
		return p, nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeResolutionFailed, "absolute path")
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeResolutionFailed, "realpath")
	}
	return real, nil
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func resolutionError(specifier, fromDir, msg string) error {
	err := errors.AddContext(errors.New(errors.CodeResolutionFailed, msg), errors.CtxSpecifier, specifier)
	if fromDir != "" {
		err = errors.AddContext(err, errors.CtxPath, fromDir)
	}
	return err
}
