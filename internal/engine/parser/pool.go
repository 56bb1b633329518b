package parser

import (
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parsers for one grammar. GrammarLoader
// keeps one pool per enabled language; scanner workers share them.
type ParserPool struct {
	lang   *sitter.Language
	pool   sync.Pool
	leased atomic.Int64
}

func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{lang: lang}
	p.pool.New = func() any {
		sp := sitter.NewParser()
		sp.SetLanguage(lang)
		return sp
	}
	return p
}

func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	sp.SetLanguage(p.lang)
	p.leased.Add(1)
	return sp
}

// Put resets sp and returns it to the pool. sp must not be used afterwards.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.leased.Add(-1)
	sp.Reset()
	p.pool.Put(sp)
}

// Leased returns the number of parsers currently checked out.
func (p *ParserPool) Leased() int {
	return int(p.leased.Load())
}
