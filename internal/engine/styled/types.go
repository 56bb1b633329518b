// Package styled recognises CSS-in-JS tagged templates: plain css tags,
// styled(Component) call tags and styled.tag member tags, confirmed through
// import bindings rather than local names alone.
package styled

import (
	"styledetect/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

const (
	defaultStyledName = "styled"
	cssName           = "css"
)

// ImportMap lists the module specifiers that provide the css and styled tags.
type ImportMap struct {
	CSS    []string
	Styled []string
}

func DefaultImportMap() ImportMap {
	return ImportMap{
		CSS:    []string{"@linaria/core", "linaria"},
		Styled: []string{"@linaria/react", "linaria/react"},
	}
}

type Options struct {
	ImportMap ImportMap
}

func DefaultOptions() Options {
	return Options{ImportMap: DefaultImportMap()}
}

// FileState is the per-file record shared by the alias tracker (the only
// writer) and the classifier. Create one per file and drop it afterwards.
type FileState struct {
	LocalStyledName string
}

// LocalName returns the local name of the styled import, "styled" unless an
// alias was recorded.
func (s *FileState) LocalName() string {
	if s == nil || s.LocalStyledName == "" {
		return defaultStyledName
	}
	return s.LocalStyledName
}

type TagKind int

const (
	TagNone TagKind = iota
	TagStyledCall
	TagStyledMember
	TagCSS
)

func (k TagKind) String() string {
	switch k {
	case TagStyledCall:
		return "styled_call"
	case TagStyledMember:
		return "styled_member"
	case TagCSS:
		return "css"
	default:
		return "none"
	}
}

// Expr references the component a styled tag wraps. Synthetic expressions
// have no syntax node; they stand for the string literal of a member tag.
type Expr struct {
	Kind      parser.NodeKind
	Node      *sitter.Node
	Value     string
	Synthetic bool
}

// Classification is the result for one tagged template. Component is set
// for the two styled kinds only.
type Classification struct {
	Kind      TagKind
	Component *Expr
}

func (k TagKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
