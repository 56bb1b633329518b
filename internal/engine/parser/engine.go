package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler is called for every node whose kind it is registered for.
// Returning true skips the node's subtree.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node) bool

// ExtractionContext carries the tree being walked and its scopes to every
// handler.
type ExtractionContext struct {
	Tree   *Tree
	Scopes *ScopeTree
}

// ExtractorEngine walks a syntax tree in source order and dispatches
// handlers by node kind.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

// Walk visits node and its descendants depth-first with a tree cursor.
func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil {
		return
	}
	cursor := node.Walk()
	defer cursor.Close()

	depth := 0
	for {
		skip := false
		current := cursor.Node()
		if handler, ok := e.handlers[current.Kind()]; ok {
			skip = handler(ctx, current)
		}
		if !skip && cursor.GotoFirstChild() {
			depth++
			continue
		}
		for {
			if depth == 0 {
				return
			}
			if cursor.GotoNextSibling() {
				break
			}
			cursor.GotoParent()
			depth--
		}
	}
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	return c.Tree.Text(node)
}

func (c *ExtractionContext) Location(node *sitter.Node) Location {
	return c.Tree.Location(node)
}

// Scope returns the innermost scope enclosing node, or nil when the context
// carries no scope tree.
func (c *ExtractionContext) Scope(node *sitter.Node) *Scope {
	if c.Scopes == nil {
		return nil
	}
	return c.Scopes.ScopeFor(node)
}
