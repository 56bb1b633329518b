package styled

import (
	"styledetect/internal/engine/parser"
	"styledetect/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Classifier classifies the tagged templates of one parsed file. Results are
// cached by node id, which is only unique within one tree, so a Classifier
// must not outlive or be shared beyond its file.
type Classifier struct {
	tree    *parser.Tree
	scopes  *parser.ScopeTree
	origins *BindingImportClassifier
	opts    Options
	cache   map[uintptr]Classification
}

func NewClassifier(tree *parser.Tree, scopes *parser.ScopeTree, modules ModuleMatcher, opts Options) *Classifier {
	return &Classifier{
		tree:    tree,
		scopes:  scopes,
		origins: NewBindingImportClassifier(tree, modules),
		opts:    opts,
		cache:   make(map[uintptr]Classification),
	}
}

// Classify decides which styled or css form the tag of node takes. Nodes
// that are not tagged templates classify as TagNone.
func (c *Classifier) Classify(node *sitter.Node, state *FileState) Classification {
	if node == nil {
		return Classification{}
	}
	if cached, ok := c.cache[node.Id()]; ok {
		observability.ClassificationCacheHitsTotal.Inc()
		return cached
	}
	result := c.classify(node, state)
	c.cache[node.Id()] = result
	observability.ClassificationsTotal.WithLabelValues(result.Kind.String()).Inc()
	return result
}

func (c *Classifier) classify(node *sitter.Node, state *FileState) Classification {
	tag, _, ok := parser.TaggedTemplateParts(node)
	if !ok {
		return Classification{}
	}
	tag = parser.Unparen(tag)
	scope := c.scopes.ScopeFor(node)
	styledName := state.LocalName()

	switch parser.KindOf(tag) {
	case parser.KindCall:
		callee, args, _ := parser.CallParts(tag)
		if len(args) != 1 {
			break
		}
		if name, ok := c.tree.IdentifierName(callee); ok && name == styledName &&
			c.origins.OriginatesFrom(name, scope, c.tree.Path, c.opts.ImportMap.Styled) {
			return Classification{Kind: TagStyledCall, Component: c.expr(args[0])}
		}

	case parser.KindMember:
		object, property, _ := parser.MemberParts(tag)
		name, ok := c.tree.IdentifierName(object)
		if !ok || name != styledName {
			break
		}
		prop, ok := c.tree.PropertyName(property)
		if !ok {
			break
		}
		if c.origins.OriginatesFrom(name, scope, c.tree.Path, c.opts.ImportMap.Styled) {
			return Classification{
				Kind:      TagStyledMember,
				Component: &Expr{Kind: parser.KindString, Value: prop, Synthetic: true},
			}
		}

	case parser.KindIdentifier:
		if name, _ := c.tree.IdentifierName(tag); name == cssName &&
			c.origins.OriginatesFrom(name, scope, c.tree.Path, c.opts.ImportMap.CSS) {
			return Classification{Kind: TagCSS}
		}
	}
	return Classification{}
}

func (c *Classifier) expr(n *sitter.Node) *Expr {
	n = parser.Unparen(n)
	e := &Expr{Kind: parser.KindOf(n), Node: n, Value: c.tree.Text(n)}
	if value, ok := c.tree.StringValue(n); ok {
		e.Value = value
	}
	return e
}

// CacheLen returns the number of nodes classified so far.
func (c *Classifier) CacheLen() int {
	return len(c.cache)
}
