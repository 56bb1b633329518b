package styled

import (
	"styledetect/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ModuleMatcher compares two module specifiers as imported from one file.
type ModuleMatcher interface {
	IsSameModule(a, b, fromFile string) bool
}

// BindingImportClassifier decides whether a name visible in a scope was
// imported from one of a set of modules.
type BindingImportClassifier struct {
	tree    *parser.Tree
	modules ModuleMatcher
}

func NewBindingImportClassifier(tree *parser.Tree, modules ModuleMatcher) *BindingImportClassifier {
	return &BindingImportClassifier{tree: tree, modules: modules}
}

// OriginatesFrom reports whether name, looked up from scope, is bound by a
// named ES import or a direct require() call whose specifier is the same
// module as one of allowed. Unbound names and every other kind of binding
// report false.
func (c *BindingImportClassifier) OriginatesFrom(name string, scope *parser.Scope, fromFile string, allowed []string) bool {
	if scope == nil {
		return false
	}
	binding := scope.Lookup(name)
	if binding == nil {
		return false
	}

	var source string
	switch parser.KindOf(binding.Decl) {
	case parser.KindImportSpecifier:
		src, ok := c.tree.ImportSource(parser.ImportStatementOf(binding.Decl))
		if !ok {
			return false
		}
		source = src
	case parser.KindVariableDeclarator:
		_, value, _ := parser.DeclaratorParts(binding.Decl)
		src, ok := c.requireSpecifier(value)
		if !ok {
			return false
		}
		source = src
	default:
		return false
	}

	for _, candidate := range allowed {
		if c.modules.IsSameModule(source, candidate, fromFile) {
			return true
		}
	}
	return false
}

// requireSpecifier extracts "x" from require("x") or require(`x`).
func (c *BindingImportClassifier) requireSpecifier(n *sitter.Node) (string, bool) {
	callee, args, ok := parser.CallParts(n)
	if !ok || len(args) != 1 {
		return "", false
	}
	if name, ok := c.tree.IdentifierName(callee); !ok || name != "require" {
		return "", false
	}
	if value, ok := c.tree.StringValue(args[0]); ok {
		return value, true
	}
	return c.tree.TemplateValue(args[0])
}
