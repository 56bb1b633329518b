package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

type BindingKind int

const (
	BindingImport BindingKind = iota // named import specifier
	BindingImportDefault
	BindingImportNamespace
	BindingImportEquals // TypeScript `import x = require("y")`
	BindingVar
	BindingLet
	BindingConst
	BindingFunction
	BindingClass
	BindingParam
	BindingCatch
)

func (k BindingKind) String() string {
	switch k {
	case BindingImport:
		return "import"
	case BindingImportDefault:
		return "import_default"
	case BindingImportNamespace:
		return "import_namespace"
	case BindingImportEquals:
		return "import_equals"
	case BindingVar:
		return "var"
	case BindingLet:
		return "let"
	case BindingConst:
		return "const"
	case BindingFunction:
		return "function"
	case BindingClass:
		return "class"
	case BindingParam:
		return "param"
	default:
		return "catch"
	}
}

// Binding ties a name to the construct that declared it. Decl is the
// import_specifier for named imports and the variable_declarator for every
// name a declarator introduces, destructured ones included.
type Binding struct {
	Name  string
	Kind  BindingKind
	Decl  *sitter.Node
	Ident *sitter.Node
	Scope *Scope
}

type Scope struct {
	Node     *sitter.Node
	Parent   *Scope
	Function bool // target for var hoisting
	bindings map[string]*Binding
}

func NewScope(node *sitter.Node, parent *Scope, function bool) *Scope {
	return &Scope{
		Node:     node,
		Parent:   parent,
		Function: function,
		bindings: make(map[string]*Binding),
	}
}

// Add declares b in s. A later declaration of the same name replaces the
// earlier one, matching redeclaration of var and function names.
func (s *Scope) Add(b *Binding) {
	b.Scope = s
	s.bindings[b.Name] = b
}

// Lookup resolves name in s or the nearest enclosing scope that declares it.
func (s *Scope) Lookup(name string) *Binding {
	for scope := s; scope != nil; scope = scope.Parent {
		if b, ok := scope.bindings[name]; ok {
			return b
		}
	}
	return nil
}

func (s *Scope) functionScope() *Scope {
	scope := s
	for scope.Parent != nil && !scope.Function {
		scope = scope.Parent
	}
	return scope
}

// ScopeTree indexes every scope of one parsed file by the id of the node that
// opens it.
type ScopeTree struct {
	Root   *Scope
	byNode map[uintptr]*Scope
	tree   *Tree
}

// ScopeFor returns the innermost scope enclosing n.
func (st *ScopeTree) ScopeFor(n *sitter.Node) *Scope {
	for p := n; p != nil; p = p.Parent() {
		if scope, ok := st.byNode[p.Id()]; ok {
			return scope
		}
	}
	return st.Root
}

// Len returns the number of scopes in the tree.
func (st *ScopeTree) Len() int {
	return len(st.byNode)
}

// BuildScopes crawls t once and records every binding in its lexical scope.
func BuildScopes(t *Tree) *ScopeTree {
	root := t.Root()
	st := &ScopeTree{
		Root:   NewScope(root, nil, true),
		byNode: make(map[uintptr]*Scope),
		tree:   t,
	}
	if root == nil {
		return st
	}
	st.byNode[root.Id()] = st.Root
	st.visitChildren(root, st.Root)
	return st
}

func (st *ScopeTree) open(n *sitter.Node, parent *Scope, function bool) *Scope {
	scope := NewScope(n, parent, function)
	st.byNode[n.Id()] = scope
	return scope
}

func (st *ScopeTree) visitChildren(n *sitter.Node, scope *Scope) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		st.visit(n.NamedChild(i), scope)
	}
}

func (st *ScopeTree) visit(n *sitter.Node, scope *Scope) {
	if n == nil {
		return
	}
	t := st.tree

	switch n.Kind() {
	case "import_statement":
		for _, imp := range t.ImportSpecifiers(n) {
			kind := BindingImport
			switch imp.Kind {
			case ImportDefault:
				kind = BindingImportDefault
			case ImportNamespace:
				kind = BindingImportNamespace
			}
			scope.Add(&Binding{Name: imp.Local, Kind: kind, Decl: imp.Node, Ident: imp.Ident})
		}
		for _, c := range namedChildren(n) {
			if c.Kind() == "import_require_clause" {
				if id := firstNamedChild(c); id != nil && id.Kind() == "identifier" {
					scope.Add(&Binding{Name: t.Text(id), Kind: BindingImportEquals, Decl: c, Ident: id})
				}
			}
		}
		return

	case "lexical_declaration", "variable_declaration":
		kind := BindingVar
		target := scope.functionScope()
		if n.Kind() == "lexical_declaration" {
			kind = BindingLet
			target = scope
			if first := n.Child(0); first != nil && first.Kind() == "const" {
				kind = BindingConst
			}
		}
		for _, decl := range namedChildren(n) {
			if decl.Kind() != "variable_declarator" {
				continue
			}
			for _, id := range patternIdentifiers(decl.ChildByFieldName("name")) {
				target.Add(&Binding{Name: t.Text(id), Kind: kind, Decl: decl, Ident: id})
			}
			// Pattern defaults may hold functions that open scopes of their own.
			st.visit(decl.ChildByFieldName("name"), scope)
			st.visit(decl.ChildByFieldName("value"), scope)
		}
		return

	case "function_declaration", "generator_function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			scope.Add(&Binding{Name: t.Text(name), Kind: BindingFunction, Decl: n, Ident: name})
		}
		st.visitFunction(n, scope)
		return

	case "function_expression", "function", "generator_function", "arrow_function", "method_definition":
		st.visitFunction(n, scope)
		return

	case "class_declaration", "abstract_class_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			scope.Add(&Binding{Name: t.Text(name), Kind: BindingClass, Decl: n, Ident: name})
		}
		st.visitChildren(n, scope)
		return

	case "class":
		inner := scope
		if name := n.ChildByFieldName("name"); name != nil {
			inner = st.open(n, scope, false)
			inner.Add(&Binding{Name: t.Text(name), Kind: BindingClass, Decl: n, Ident: name})
		}
		st.visitChildren(n, inner)
		return

	case "statement_block", "for_statement", "switch_body":
		st.visitChildren(n, st.open(n, scope, false))
		return

	case "for_in_statement":
		inner := st.open(n, scope, false)
		if kindNode := n.ChildByFieldName("kind"); kindNode != nil {
			kind, target := BindingLet, inner
			switch kindNode.Kind() {
			case "const":
				kind = BindingConst
			case "var":
				kind, target = BindingVar, scope.functionScope()
			}
			for _, id := range patternIdentifiers(n.ChildByFieldName("left")) {
				target.Add(&Binding{Name: t.Text(id), Kind: kind, Decl: n, Ident: id})
			}
		}
		st.visit(n.ChildByFieldName("left"), inner)
		st.visit(n.ChildByFieldName("right"), inner)
		st.visit(n.ChildByFieldName("body"), inner)
		return

	case "catch_clause":
		inner := st.open(n, scope, false)
		if param := n.ChildByFieldName("parameter"); param != nil {
			for _, id := range patternIdentifiers(param) {
				inner.Add(&Binding{Name: t.Text(id), Kind: BindingCatch, Decl: n, Ident: id})
			}
			st.visit(param, inner)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			st.visitChildren(body, inner)
		}
		return
	}

	st.visitChildren(n, scope)
}

// visitFunction opens the function scope, binds parameters (and the name of
// a named function expression) inside it, and crawls the body in place.
func (st *ScopeTree) visitFunction(n *sitter.Node, scope *Scope) {
	t := st.tree
	inner := st.open(n, scope, true)

	if n.Kind() != "function_declaration" && n.Kind() != "generator_function_declaration" && n.Kind() != "method_definition" {
		if name := n.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
			inner.Add(&Binding{Name: t.Text(name), Kind: BindingFunction, Decl: n, Ident: name})
		}
	}

	if param := n.ChildByFieldName("parameter"); param != nil {
		inner.Add(&Binding{Name: t.Text(param), Kind: BindingParam, Decl: param, Ident: param})
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		for _, p := range namedChildren(params) {
			for _, id := range patternIdentifiers(p) {
				inner.Add(&Binding{Name: t.Text(id), Kind: BindingParam, Decl: p, Ident: id})
			}
			st.visitChildren(p, inner)
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	if body.Kind() == "statement_block" {
		st.visitChildren(body, inner)
		return
	}
	st.visit(body, inner)
}

// patternIdentifiers returns the identifiers a binding pattern declares.
// Default values are skipped; only the bound names are returned.
func patternIdentifiers(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []*sitter.Node{n}
	case "pair_pattern":
		return patternIdentifiers(n.ChildByFieldName("value"))
	case "assignment_pattern", "object_assignment_pattern":
		return patternIdentifiers(n.ChildByFieldName("left"))
	case "required_parameter", "optional_parameter":
		return patternIdentifiers(n.ChildByFieldName("pattern"))
	case "object_pattern", "array_pattern", "rest_pattern":
		var out []*sitter.Node
		for _, c := range namedChildren(n) {
			out = append(out, patternIdentifiers(c)...)
		}
		return out
	}
	return nil
}
