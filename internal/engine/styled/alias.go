package styled

import (
	"slices"

	"styledetect/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// TrackStyledAlias records the local name of `styled` when decl imports it
// under another name from a styled source. The source is compared textually.
// A later renamed import overwrites an earlier one.
func TrackStyledAlias(tree *parser.Tree, decl *sitter.Node, state *FileState, opts Options) {
	if state == nil {
		return
	}
	source, ok := tree.ImportSource(decl)
	if !ok || !slices.Contains(opts.ImportMap.Styled, source) {
		return
	}
	for _, imp := range tree.ImportSpecifiers(decl) {
		if imp.Kind != parser.ImportNamed || imp.Imported != defaultStyledName {
			continue
		}
		if imp.Local != defaultStyledName {
			state.LocalStyledName = imp.Local
		}
	}
}
