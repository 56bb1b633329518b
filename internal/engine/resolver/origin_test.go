package resolver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	calls int
	paths map[string]string
}

func (c *countingResolver) Resolve(specifier, fromDir string) (string, error) {
	c.calls++
	if p, ok := c.paths[specifier]; ok {
		return p, nil
	}
	return "", resolutionError(specifier, fromDir, "cannot find module")
}

func TestModuleID_Equal(t *testing.T) {
	assert.True(t, ModuleID("/a.js").Equal("/a.js"))
	assert.False(t, ModuleID("/a.js").Equal("/b.js"))
	assert.False(t, Unresolved.Equal(Unresolved))
	assert.False(t, Unresolved.Equal("/a.js"))
	assert.False(t, ModuleID("/a.js").Equal(Unresolved))
}

func TestOriginResolver_IsSameModuleFastPath(t *testing.T) {
	stub := &countingResolver{}
	o := NewOriginResolver(stub, 8)

	assert.True(t, o.IsSameModule("@linaria/react", "@linaria/react", "/nowhere/file.js"))
	assert.True(t, o.IsSameModule("does-not-exist", "does-not-exist", "/nowhere/file.js"))
	assert.Zero(t, stub.calls, "identical specifiers must not hit the resolver")
}

func TestOriginResolver_IsSameModuleResolved(t *testing.T) {
	stub := &countingResolver{paths: map[string]string{
		"@linaria/react":           "/repo/node_modules/@linaria/react/lib/index.js",
		"@linaria/react/lib/index": "/repo/node_modules/@linaria/react/lib/index.js",
		"other":                    "/repo/node_modules/other/index.js",
	}}
	o := NewOriginResolver(stub, 8)
	from := "/repo/src/button.js"

	assert.True(t, o.IsSameModule("@linaria/react", "@linaria/react/lib/index", from))
	assert.False(t, o.IsSameModule("@linaria/react", "other", from))
	assert.False(t, o.IsSameModule("missing-a", "missing-b", from), "unresolved sides never match")
}

func TestOriginResolver_Memoizes(t *testing.T) {
	stub := &countingResolver{paths: map[string]string{"a": "/a.js"}}
	o := NewOriginResolver(stub, 8)

	assert.Equal(t, ModuleID("/a.js"), o.Resolve("a", "/repo/src/x.js"))
	assert.Equal(t, ModuleID("/a.js"), o.Resolve("a", "/repo/src/y.js"))
	assert.Equal(t, 1, stub.calls, "same directory and specifier should be cached")

	o.Resolve("a", "/repo/other/z.js")
	assert.Equal(t, 2, stub.calls, "different directory is a separate cache entry")

	assert.Equal(t, Unresolved, o.Resolve("missing", "/repo/src/x.js"))
	assert.Equal(t, Unresolved, o.Resolve("missing", "/repo/src/x.js"))
	assert.Equal(t, 3, stub.calls, "failures are cached too")

	o.Reset()
	assert.Zero(t, o.CacheLen())
	o.Resolve("a", "/repo/src/x.js")
	assert.Equal(t, 4, stub.calls)
}

func TestOriginResolver_Filesystem(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"node_modules/@linaria/react/package.json": `{"main": "lib/index.js"}`,
		"node_modules/@linaria/react/lib/index.js": "",
		"src/button.js": "",
	})
	o := NewOriginResolver(NewNodeResolver(Options{}), 0)
	from := filepath.Join(root, "src", "button.js")

	id := o.Resolve("@linaria/react", from)
	require.True(t, id.IsResolved())
	assert.True(t, o.IsSameModule("@linaria/react", "../node_modules/@linaria/react", from))
	assert.False(t, o.IsSameModule("@linaria/react", "@linaria/core", from))
}
