package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

func javascriptLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_javascript.Language())
}

func TestParserPool_GetPut(t *testing.T) {
	pool := NewParserPool(javascriptLanguage())

	sp := pool.Get()
	if sp == nil {
		t.Fatal("expected non-nil parser from pool")
	}
	if pool.Leased() != 1 {
		t.Fatalf("expected 1 leased parser, got %d", pool.Leased())
	}
	pool.Put(sp)
	pool.Put(nil)
	if pool.Leased() != 0 {
		t.Fatalf("expected 0 leased parsers, got %d", pool.Leased())
	}
}

func TestParserPool_Concurrent(t *testing.T) {
	pool := NewParserPool(javascriptLanguage())
	src := []byte("const a = css`color: red;`;")

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp := pool.Get()
			defer pool.Put(sp)
			tree := sp.Parse(src, nil)
			if tree == nil {
				errs <- "nil tree"
				return
			}
			defer tree.Close()
			if tree.RootNode().Kind() != "program" {
				errs <- tree.RootNode().Kind()
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("unexpected parse result: %s", e)
	}
}
