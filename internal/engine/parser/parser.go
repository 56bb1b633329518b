package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"styledetect/internal/core/errors"
	"styledetect/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Parser struct {
	loader         *GrammarLoader
	extensions     map[string]string
	testFileSuffix []string
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extensions: make(map[string]string),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		p.testFileSuffix = append(p.testFileSuffix, spec.TestFileSuffixes...)
	}
	sort.Strings(p.testFileSuffix)
	return p
}

// ParseFile parses content with the grammar registered for path's extension.
// The returned tree must be closed by the caller.
func (p *Parser) ParseFile(path string, content []byte) (*Tree, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}

	pool := p.loader.Pool(lang)
	if pool == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		err := errors.AddContext(errors.New(errors.CodeParseError, "parse failed"), errors.CtxPath, path)
		return nil, errors.AddContext(err, errors.CtxLanguage, lang)
	}

	return &Tree{
		Path:     path,
		Language: lang,
		Source:   content,
		tree:     tree,
	}, nil
}

func (p *Parser) detectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := p.extensions[ext]; ok {
		return lang
	}
	return ""
}

func (p *Parser) IsSupportedPath(filePath string) bool {
	return p.GetLanguage(filePath) != ""
}

func (p *Parser) GetLanguage(path string) string {
	return p.detectLanguage(path)
}

func (p *Parser) IsTestFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, suffix := range p.testFileSuffix {
		if strings.HasSuffix(base, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

func (p *Parser) SupportedExtensions() []string {
	return util.SortedStringKeys(p.extensions)
}

func (p *Parser) SupportedTestFileSuffixes() []string {
	return append([]string(nil), p.testFileSuffix...)
}

// Tree is a parsed source file. Node identities are only meaningful within
// the tree that produced them.
type Tree struct {
	Path     string
	Language string
	Source   []byte
	tree     *sitter.Tree
}

func (t *Tree) Root() *sitter.Node {
	if t == nil || t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

func (t *Tree) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(t.Source[node.StartByte():node.EndByte()])
}

func (t *Tree) Location(node *sitter.Node) Location {
	return Location{
		File:   t.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}
