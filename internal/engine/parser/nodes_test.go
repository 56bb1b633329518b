package parser

import (
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

func findAll(tree *Tree, kind string) []*sitter.Node {
	var out []*sitter.Node
	NewExtractorEngine(map[string]NodeHandler{
		kind: func(_ *ExtractionContext, n *sitter.Node) bool {
			out = append(out, n)
			return false
		},
	}).Walk(&ExtractionContext{Tree: tree}, tree.Root())
	return out
}

func TestKindOf(t *testing.T) {
	tree := mustParse(t, "a.js", "tag`x`; f(1); a.b; (a?.b); g?.(1); ('s');\n")

	calls := findAll(tree, "call_expression")
	if len(calls) != 3 {
		t.Fatalf("expected 3 call expressions, got %d", len(calls))
	}
	want := []NodeKind{KindTaggedTemplate, KindCall, KindOther}
	for i, n := range calls {
		if got := KindOf(n); got != want[i] {
			t.Errorf("call %d (%s): got %s, want %s", i, tree.Text(n), got, want[i])
		}
	}

	members := findAll(tree, "member_expression")
	if len(members) != 2 {
		t.Fatalf("expected 2 member expressions, got %d", len(members))
	}
	if KindOf(members[0]) != KindMember || KindOf(members[1]) != KindOther {
		t.Errorf("unexpected member kinds: %s, %s", KindOf(members[0]), KindOf(members[1]))
	}

	for _, paren := range findAll(tree, "parenthesized_expression") {
		if inner := Unparen(paren); inner.Kind() == "parenthesized_expression" {
			t.Errorf("Unparen left %s", tree.Text(inner))
		}
	}
	if KindOf(nil) != KindOther {
		t.Error("nil node should be KindOther")
	}
}

func TestUnparen_TypeArguments(t *testing.T) {
	tree := mustParse(t, "a.ts", "const A = styled.div<{ a: string }>`x`;\n")
	calls := findAll(tree, "call_expression")
	if len(calls) != 1 {
		t.Fatalf("expected 1 call expression, got %d", len(calls))
	}
	tag, _, ok := TaggedTemplateParts(calls[0])
	if !ok {
		t.Fatalf("expected a tagged template, got %s", KindOf(calls[0]))
	}
	if got := KindOf(tag); got != KindMember {
		t.Fatalf("tag %q: got %s, want %s", tree.Text(tag), got, KindMember)
	}
	object, property, _ := MemberParts(tag)
	if tree.Text(object) != "styled" || tree.Text(property) != "div" {
		t.Errorf("unexpected member parts %q.%q", tree.Text(object), tree.Text(property))
	}
}

func TestStringValue(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`'@linaria/react'`, "@linaria/react"},
		{`"a\"b"`, `a"b`},
		{`'\x41B\u{43}'`, "ABC"},
		{`'tab\there'`, "tab\there"},
		{`'\d'`, "d"},
		{`''`, ""},
	}
	for _, tt := range tests {
		tree := mustParse(t, "a.js", "x = "+tt.src+";\n")
		strs := findAll(tree, "string")
		if len(strs) != 1 {
			t.Fatalf("%s: expected one string node, got %d", tt.src, len(strs))
		}
		got, ok := tree.StringValue(strs[0])
		if !ok || got != tt.want {
			t.Errorf("StringValue(%s) = %q, %v; want %q", tt.src, got, ok, tt.want)
		}
	}
}

func TestTemplateValue(t *testing.T) {
	tree := mustParse(t, "a.js", "a = `plain\\n`; b = `with ${x}`;\n")
	templates := findAll(tree, "template_string")
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	if got, ok := tree.TemplateValue(templates[0]); !ok || got != "plain\n" {
		t.Errorf("TemplateValue = %q, %v", got, ok)
	}
	if _, ok := tree.TemplateValue(templates[1]); ok {
		t.Error("template with substitution must not have a static value")
	}
}

func TestImportSpecifiers(t *testing.T) {
	src := "import def, { styled as S, css } from '@linaria/react';\n" +
		"import * as ns from 'ns';\n" +
		"import 'side-effect';\n"
	tree := mustParse(t, "a.js", src)
	imports := findAll(tree, "import_statement")
	if len(imports) != 3 {
		t.Fatalf("expected 3 import statements, got %d", len(imports))
	}

	source, ok := tree.ImportSource(imports[0])
	if !ok || source != "@linaria/react" {
		t.Fatalf("ImportSource = %q, %v", source, ok)
	}

	specs := tree.ImportSpecifiers(imports[0])
	want := []ImportedName{
		{Kind: ImportDefault, Imported: "default", Local: "def"},
		{Kind: ImportNamed, Imported: "styled", Local: "S"},
		{Kind: ImportNamed, Imported: "css", Local: "css"},
	}
	if len(specs) != len(want) {
		t.Fatalf("expected %d specifiers, got %d", len(want), len(specs))
	}
	for i, w := range want {
		got := specs[i]
		if got.Kind != w.Kind || got.Imported != w.Imported || got.Local != w.Local {
			t.Errorf("specifier %d = %+v, want %+v", i, got, w)
		}
	}
	if KindOf(specs[1].Node) != KindImportSpecifier {
		t.Error("named import should be declared by an import_specifier")
	}
	if ImportStatementOf(specs[1].Node) == nil {
		t.Error("expected enclosing import statement")
	}

	ns := tree.ImportSpecifiers(imports[1])
	if len(ns) != 1 || ns[0].Kind != ImportNamespace || ns[0].Local != "ns" {
		t.Errorf("unexpected namespace import %+v", ns)
	}
	if got := tree.ImportSpecifiers(imports[2]); len(got) != 0 {
		t.Errorf("side-effect import should bind nothing, got %+v", got)
	}
}

func TestCallAndMemberParts(t *testing.T) {
	tree := mustParse(t, "a.js", "styled(Button)`x`; styled.div`y`;\n")
	tagged := findAll(tree, "call_expression")

	var calls, members int
	for _, n := range tagged {
		if KindOf(n) != KindTaggedTemplate {
			continue
		}
		tag, quasi, ok := TaggedTemplateParts(n)
		if !ok || quasi.Kind() != "template_string" {
			t.Fatalf("TaggedTemplateParts failed for %s", tree.Text(n))
		}
		if callee, args, ok := CallParts(tag); ok {
			calls++
			if tree.Text(callee) != "styled" || len(args) != 1 || tree.Text(args[0]) != "Button" {
				t.Errorf("unexpected call parts for %s", tree.Text(tag))
			}
		}
		if object, property, ok := MemberParts(tag); ok {
			members++
			name, _ := tree.PropertyName(property)
			if tree.Text(object) != "styled" || name != "div" {
				t.Errorf("unexpected member parts for %s", tree.Text(tag))
			}
		}
	}
	if calls != 1 || members != 1 {
		t.Fatalf("expected one call tag and one member tag, got %d and %d", calls, members)
	}
}
