package resolver

import (
	"log/slog"
	"path/filepath"

	"styledetect/internal/shared/observability"
)

// ModuleID is the canonical identity of a resolved module: the realpath of
// its entry file, or "node:<name>" for core modules.
type ModuleID string

// Unresolved marks a specifier that could not be resolved.
const Unresolved ModuleID = ""

// Equal reports whether both ids name the same resolved module. Unresolved
// is never equal to anything, itself included.
func (id ModuleID) Equal(other ModuleID) bool {
	return id != Unresolved && other != Unresolved && id == other
}

func (id ModuleID) IsResolved() bool {
	return id != Unresolved
}

// ModuleResolver resolves a specifier requested from a directory.
type ModuleResolver interface {
	Resolve(specifier, fromDir string) (string, error)
}

const DefaultCacheSize = 1024

type cacheKey struct {
	dir       string
	specifier string
}

// OriginResolver turns specifiers into ModuleIDs relative to the file that
// requests them and memoizes the answers per directory.
type OriginResolver struct {
	resolver ModuleResolver
	cache    *LRUCache[cacheKey, ModuleID]
}

func NewOriginResolver(r ModuleResolver, cacheSize int) *OriginResolver {
	if r == nil {
		r = NewNodeResolver(Options{})
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &OriginResolver{
		resolver: r,
		cache:    NewLRUCache[cacheKey, ModuleID](cacheSize),
	}
}

// Resolve returns the ModuleID of specifier as seen from fromFile, or
// Unresolved. Resolution errors never escape.
func (o *OriginResolver) Resolve(specifier, fromFile string) ModuleID {
	key := cacheKey{dir: filepath.Dir(fromFile), specifier: specifier}
	id, cached := o.cache.GetOrLoad(key, func() ModuleID {
		resolved, err := o.resolver.Resolve(specifier, key.dir)
		if err != nil {
			observability.UnresolvedSpecifiersTotal.Inc()
			slog.Debug("module unresolved", "specifier", specifier, "from", fromFile, "error", err)
			return Unresolved
		}
		return ModuleID(resolved)
	})
	if cached {
		observability.ResolverCacheHitsTotal.Inc()
	} else {
		observability.ResolverCacheMissesTotal.Inc()
	}
	return id
}

// IsSameModule reports whether specifiers a and b name the same module when
// imported from fromFile. Identical strings match without touching the
// filesystem; otherwise both sides are resolved from fromFile.
func (o *OriginResolver) IsSameModule(a, b, fromFile string) bool {
	if a == b {
		return true
	}
	return o.Resolve(a, fromFile).Equal(o.Resolve(b, fromFile))
}

// Reset drops every memoized resolution, e.g. after files changed on disk.
func (o *OriginResolver) Reset() {
	o.cache.Clear()
}

func (o *OriginResolver) CacheLen() int {
	return o.cache.Len()
}
