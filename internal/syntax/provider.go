//go:build cgo

package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"deptrim/internal/errors"
)

// Tree is a parsed file. Callers must Close it.
type Tree struct {
	tree   *sitter.Tree
	source []byte
	lang   Language
}

// Root returns the root node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Source returns the text the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Language returns the grammar used.
func (t *Tree) Language() Language {
	return t.lang
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

// Provider parses source text with tree-sitter.
// Safe for concurrent use: every Parse call gets its own parser.
type Provider struct{}

// NewProvider creates a syntax tree provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Parse parses source with the grammar selected by opts. tree-sitter always
// produces a tree; one containing error or missing nodes is reported as a
// ParseError so the file contributes no usage evidence.
func (p *Provider) Parse(ctx context.Context, source []byte, opts Options) (*Tree, error) {
	lang := opts.Language()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar(lang))

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.New(errors.ParseError, "parse aborted", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		msg := "syntax error"
		if bad := firstErrorNode(root); bad != nil {
			pos := bad.StartPoint()
			msg = fmt.Sprintf("syntax error at %d:%d", pos.Row+1, pos.Column+1)
		}
		tree.Close()
		return nil, errors.New(errors.ParseError, msg, nil)
	}

	return &Tree{tree: tree, source: source, lang: lang}, nil
}

func grammar(lang Language) *sitter.Language {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// firstErrorNode finds the earliest ERROR or MISSING node, depth first.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if bad := firstErrorNode(node.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

// IsAvailable reports whether parsing is available in this build.
func IsAvailable() bool {
	return true
}
