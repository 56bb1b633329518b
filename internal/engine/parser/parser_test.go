package parser

import (
	"testing"

	"styledetect/internal/core/errors"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader()
	if err != nil {
		t.Fatal(err)
	}
	return NewParser(loader)
}

func mustParse(t *testing.T, path, src string) *Tree {
	t.Helper()
	tree, err := newTestParser(t).ParseFile(path, []byte(src))
	if err != nil {
		t.Fatalf("ParseFile(%s): %v", path, err)
	}
	t.Cleanup(tree.Close)
	return tree
}

func TestParser_Languages(t *testing.T) {
	p := newTestParser(t)
	tests := map[string]string{
		"a.js":      "javascript",
		"a.JSX":     "javascript",
		"a.mjs":     "javascript",
		"a.ts":      "typescript",
		"a.tsx":     "tsx",
		"a.css":     "",
		"Makefile":  "",
		"dir/a.cjs": "javascript",
		"dir/b.mts": "typescript",
	}
	for path, want := range tests {
		if got := p.GetLanguage(path); got != want {
			t.Errorf("GetLanguage(%s) = %q, want %q", path, got, want)
		}
	}
	if !p.IsSupportedPath("x.tsx") || p.IsSupportedPath("x.go") {
		t.Error("unexpected IsSupportedPath result")
	}
}

func TestParser_ParseFile(t *testing.T) {
	tree := mustParse(t, "src/button.tsx", "const A = <div />;\n")
	if tree.Language != "tsx" {
		t.Fatalf("expected tsx, got %s", tree.Language)
	}
	if tree.Root() == nil || tree.Root().Kind() != "program" {
		t.Fatal("expected program root")
	}
	loc := tree.Location(tree.Root().NamedChild(0))
	if loc.File != "src/button.tsx" || loc.Line != 1 || loc.Column != 1 {
		t.Fatalf("unexpected location %+v", loc)
	}

	tree.Close()
	if tree.Root() != nil {
		t.Fatal("expected nil root after Close")
	}
}

func TestParser_Unsupported(t *testing.T) {
	_, err := newTestParser(t).ParseFile("main.go", []byte("package main"))
	if !errors.IsCode(err, errors.CodeNotSupported) {
		t.Fatalf("expected NOT_SUPPORTED, got %v", err)
	}
}

func TestParser_IsTestFile(t *testing.T) {
	p := newTestParser(t)
	if !p.IsTestFile("src/button.test.tsx") || !p.IsTestFile("a.spec.js") {
		t.Error("expected test files to be detected")
	}
	if p.IsTestFile("src/button.tsx") {
		t.Error("did not expect button.tsx to be a test file")
	}
}

func TestParser_DisabledLanguage(t *testing.T) {
	disabled := false
	registry, err := BuildLanguageRegistry(map[string]LanguageOverride{"typescript": {Enabled: &disabled}})
	if err != nil {
		t.Fatal(err)
	}
	loader, err := NewGrammarLoaderWithRegistry(registry)
	if err != nil {
		t.Fatal(err)
	}
	p := NewParser(loader)
	if p.IsSupportedPath("a.ts") {
		t.Error("expected .ts to be unsupported when typescript is disabled")
	}
	if loader.Pool("typescript") != nil {
		t.Error("expected no pool for a disabled language")
	}
}
