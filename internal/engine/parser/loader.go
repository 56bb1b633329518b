package parser

import (
	"fmt"
	"sort"

	"styledetect/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

type GrammarLoader struct {
	languages map[string]*sitter.Language
	pools     map[string]*ParserPool
	registry  map[string]LanguageSpec
}

func NewGrammarLoader() (*GrammarLoader, error) {
	registry, err := BuildLanguageRegistry(nil)
	if err != nil {
		return nil, err
	}
	return NewGrammarLoaderWithRegistry(registry)
}

func NewGrammarLoaderWithRegistry(registry map[string]LanguageSpec) (*GrammarLoader, error) {
	if registry == nil {
		var err error
		registry, err = BuildLanguageRegistry(nil)
		if err != nil {
			return nil, err
		}
	}

	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language),
		pools:     make(map[string]*ParserPool),
		registry:  cloneLanguageRegistry(registry),
	}

	for _, langID := range util.SortedStringKeys(gl.registry) {
		spec := gl.registry[langID]
		if !spec.Enabled {
			continue
		}
		switch langID {
		case "javascript":
			gl.languages["javascript"] = sitter.NewLanguage(tree_sitter_javascript.Language())
		case "typescript":
			gl.languages["typescript"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		case "tsx":
			gl.languages["tsx"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		default:
			return nil, fmt.Errorf("language %q is enabled but runtime grammar loading is not implemented", langID)
		}
		gl.pools[langID] = NewParserPool(gl.languages[langID])
	}

	return gl, nil
}

// Pool returns the parser pool for an enabled language, or nil.
func (gl *GrammarLoader) Pool(lang string) *ParserPool {
	return gl.pools[lang]
}

func (gl *GrammarLoader) LanguageRegistry() map[string]LanguageSpec {
	return cloneLanguageRegistry(gl.registry)
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	set := make(map[string]bool)
	for _, spec := range gl.registry {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			set[ext] = true
		}
	}
	extensions := make([]string, 0, len(set))
	for ext := range set {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
