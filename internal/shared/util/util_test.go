package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizePatternPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: ""},
		{name: "Dot", input: ".", expected: ""},
		{name: "Trim", input: "  ./foo/bar  ", expected: "foo/bar"},
		{name: "Relative", input: "foo/../bar", expected: "bar"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizePatternPath(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestHasPathPrefix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		path     string
		prefix   string
		expected bool
	}{
		{name: "Exact", path: "src/components", prefix: "src/components", expected: true},
		{name: "Nested", path: "src/components/Button.tsx", prefix: "src/components", expected: true},
		{name: "Neighbor", path: "src/componentsx", prefix: "src/components", expected: false},
		{name: "MixedSeparators", path: `src\components\Button.tsx`, prefix: "src/components", expected: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := HasPathPrefix(tc.path, tc.prefix); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestRelativeSlashPath(t *testing.T) {
	root := filepath.Join("project")
	if got := RelativeSlashPath(root, filepath.Join("project", "src", "a.js")); got != "src/a.js" {
		t.Fatalf("expected src/a.js, got %q", got)
	}
	outside := filepath.Join("elsewhere", "b.js")
	if got := RelativeSlashPath(root, outside); got != filepath.ToSlash(outside) {
		t.Fatalf("expected path outside root unchanged, got %q", got)
	}
	if got := RelativeSlashPath("", "x/y.js"); got != "x/y.js" {
		t.Fatalf("expected unchanged path for empty root, got %q", got)
	}
}

func TestSortedStringKeys(t *testing.T) {
	got := SortedStringKeys(map[string]int{"tsx": 1, "javascript": 2, "typescript": 3})
	want := []string{"javascript", "tsx", "typescript"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestWriteFileWithDirs(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "reports", "nested", "styled.sarif")
	if err := WriteFileWithDirs(target, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("unexpected content %q", string(data))
	}
}
