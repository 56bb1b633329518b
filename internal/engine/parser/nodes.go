package parser

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeKind is the closed set of syntax shapes the styled analysis inspects.
// Every other tree-sitter kind maps to KindOther.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindIdentifier
	KindCall
	KindMember
	KindString
	KindTemplate
	KindTaggedTemplate
	KindImportStatement
	KindImportSpecifier
	KindVariableDeclarator
)

func (k NodeKind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindCall:
		return "call"
	case KindMember:
		return "member"
	case KindString:
		return "string"
	case KindTemplate:
		return "template"
	case KindTaggedTemplate:
		return "tagged_template"
	case KindImportStatement:
		return "import_statement"
	case KindImportSpecifier:
		return "import_specifier"
	case KindVariableDeclarator:
		return "variable_declarator"
	default:
		return "other"
	}
}

// KindOf classifies n after stripping parentheses. Optional-chain calls and
// member accesses are KindOther.
func KindOf(n *sitter.Node) NodeKind {
	n = Unparen(n)
	if n == nil {
		return KindOther
	}
	switch n.Kind() {
	case "identifier":
		return KindIdentifier
	case "call_expression":
		if hasOptionalChain(n) {
			return KindOther
		}
		if args := n.ChildByFieldName("arguments"); args != nil && args.Kind() == "template_string" {
			return KindTaggedTemplate
		}
		return KindCall
	case "member_expression":
		if hasOptionalChain(n) {
			return KindOther
		}
		return KindMember
	case "string":
		return KindString
	case "template_string":
		return KindTemplate
	case "import_statement":
		return KindImportStatement
	case "import_specifier":
		return KindImportSpecifier
	case "variable_declarator":
		return KindVariableDeclarator
	}
	return KindOther
}

// Unparen strips enclosing parentheses and TypeScript type-argument wrappers.
// The grammar parses `styled.div<{ a: string }>` followed by a template as an
// instantiation_expression inside a non_null_expression whose "!" is missing;
// both are stripped. A non-null assertion actually written in source is kept.
func Unparen(n *sitter.Node) *sitter.Node {
	for n != nil {
		var inner *sitter.Node
		switch n.Kind() {
		case "parenthesized_expression":
			inner = firstNamedChild(n)
		case "instantiation_expression":
			inner = n.ChildByFieldName("function")
			if inner == nil {
				inner = firstNamedChild(n)
			}
		case "non_null_expression":
			if hasMissingChild(n) {
				inner = firstNamedChild(n)
			}
		}
		if inner == nil || inner.Kind() == "type_arguments" {
			return n
		}
		n = inner
	}
	return n
}

func hasMissingChild(n *sitter.Node) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.IsMissing() {
			return true
		}
	}
	return false
}

func hasOptionalChain(n *sitter.Node) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == "optional_chain" {
			return true
		}
	}
	return false
}

// IdentifierName returns the name of a plain identifier.
func (t *Tree) IdentifierName(n *sitter.Node) (string, bool) {
	n = Unparen(n)
	if KindOf(n) != KindIdentifier {
		return "", false
	}
	return t.Text(n), true
}

// TaggedTemplateParts splits a tagged template into its tag and quasi.
func TaggedTemplateParts(n *sitter.Node) (tag, quasi *sitter.Node, ok bool) {
	if KindOf(n) != KindTaggedTemplate {
		return nil, nil, false
	}
	n = Unparen(n)
	return n.ChildByFieldName("function"), n.ChildByFieldName("arguments"), true
}

// CallParts returns the callee and argument nodes of a non-tagged call.
func CallParts(n *sitter.Node) (callee *sitter.Node, args []*sitter.Node, ok bool) {
	if KindOf(n) != KindCall {
		return nil, nil, false
	}
	n = Unparen(n)
	argList := n.ChildByFieldName("arguments")
	if argList == nil {
		return nil, nil, false
	}
	return n.ChildByFieldName("function"), namedChildren(argList), true
}

// MemberParts returns the object and property of a dotted member access.
// Computed access is a subscript_expression in the grammar and never matches.
func MemberParts(n *sitter.Node) (object, property *sitter.Node, ok bool) {
	if KindOf(n) != KindMember {
		return nil, nil, false
	}
	n = Unparen(n)
	return n.ChildByFieldName("object"), n.ChildByFieldName("property"), true
}

// PropertyName returns the name of a plain (non-private) property identifier.
func (t *Tree) PropertyName(n *sitter.Node) (string, bool) {
	if n == nil || n.Kind() != "property_identifier" {
		return "", false
	}
	return t.Text(n), true
}

// StringValue returns the cooked value of a string literal.
func (t *Tree) StringValue(n *sitter.Node) (string, bool) {
	n = Unparen(n)
	if KindOf(n) != KindString {
		return "", false
	}
	return t.cookedText(n), true
}

// TemplateValue returns the cooked value of a template literal without
// substitutions. Templates with `${}` parts report false.
func (t *Tree) TemplateValue(n *sitter.Node) (string, bool) {
	n = Unparen(n)
	if KindOf(n) != KindTemplate {
		return "", false
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil && c.Kind() == "template_substitution" {
			return "", false
		}
	}
	return t.cookedText(n), true
}

func (t *Tree) cookedText(n *sitter.Node) string {
	var b strings.Builder
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "string_fragment":
			b.WriteString(t.Text(c))
		case "escape_sequence":
			b.WriteString(decodeEscape(t.Text(c)))
		}
	}
	return b.String()
}

func decodeEscape(seq string) string {
	if len(seq) < 2 || seq[0] != '\\' {
		return seq
	}
	switch {
	case strings.HasPrefix(seq, `\u{`) && strings.HasSuffix(seq, "}"):
		code, err := strconv.ParseUint(seq[3:len(seq)-1], 16, 32)
		if err != nil {
			return seq
		}
		return string(rune(code))
	case seq[1] == '\n' || seq[1] == '\r':
		// Line continuation contributes nothing to the cooked value.
		return ""
	case seq == `\0`:
		return "\x00"
	}
	value, _, tail, err := strconv.UnquoteChar(seq, 0)
	if err != nil || tail != "" {
		// Identity escapes such as \d cook to the escaped character.
		return seq[1:]
	}
	return string(value)
}

// ImportSource returns the module specifier of an import statement.
func (t *Tree) ImportSource(n *sitter.Node) (string, bool) {
	if KindOf(n) != KindImportStatement {
		return "", false
	}
	return t.StringValue(n.ChildByFieldName("source"))
}

// ImportKind distinguishes the three ways an import statement binds names.
type ImportKind int

const (
	ImportNamed ImportKind = iota
	ImportDefault
	ImportNamespace
)

// ImportedName is one local binding introduced by an import statement.
type ImportedName struct {
	Kind     ImportKind
	Imported string // exported name; "default" or "*" for the other kinds
	Local    string
	Node     *sitter.Node // import_specifier, or the identifier for default/namespace
	Ident    *sitter.Node
}

// ImportSpecifiers lists the bindings an import statement introduces.
func (t *Tree) ImportSpecifiers(n *sitter.Node) []ImportedName {
	if KindOf(n) != KindImportStatement {
		return nil
	}
	var clause *sitter.Node
	for _, c := range namedChildren(n) {
		if c.Kind() == "import_clause" {
			clause = c
			break
		}
	}
	if clause == nil {
		return nil
	}

	var out []ImportedName
	for _, c := range namedChildren(clause) {
		switch c.Kind() {
		case "identifier":
			out = append(out, ImportedName{Kind: ImportDefault, Imported: "default", Local: t.Text(c), Node: c, Ident: c})
		case "namespace_import":
			if id := lastNamedChildOfKind(c, "identifier"); id != nil {
				out = append(out, ImportedName{Kind: ImportNamespace, Imported: "*", Local: t.Text(id), Node: id, Ident: id})
			}
		case "named_imports":
			for _, spec := range namedChildren(c) {
				if spec.Kind() != "import_specifier" {
					continue
				}
				name := spec.ChildByFieldName("name")
				if name == nil {
					continue
				}
				imported := t.Text(name)
				if name.Kind() == "string" {
					imported, _ = t.StringValue(name)
				}
				local := name
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = alias
				}
				out = append(out, ImportedName{Kind: ImportNamed, Imported: imported, Local: t.Text(local), Node: spec, Ident: local})
			}
		}
	}
	return out
}

// ImportStatementOf returns the import statement enclosing an import specifier.
func ImportStatementOf(spec *sitter.Node) *sitter.Node {
	for p := spec; p != nil; p = p.Parent() {
		if p.Kind() == "import_statement" {
			return p
		}
	}
	return nil
}

// DeclaratorParts returns the binding pattern and initializer of a variable declarator.
func DeclaratorParts(n *sitter.Node) (name, value *sitter.Node, ok bool) {
	if KindOf(n) != KindVariableDeclarator {
		return nil, nil, false
	}
	return n.ChildByFieldName("name"), n.ChildByFieldName("value"), true
}

// NamedChildren returns the named children of n, comments excluded.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	return namedChildren(n)
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil || c.Kind() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	children := namedChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func lastNamedChildOfKind(n *sitter.Node, kind string) *sitter.Node {
	children := namedChildren(n)
	for i := len(children) - 1; i >= 0; i-- {
		if children[i].Kind() == kind {
			return children[i]
		}
	}
	return nil
}
