//go:build cgo

package usage

import (
	sitter "github.com/smacker/go-tree-sitter"

	"deptrim/internal/collector"
	"deptrim/internal/declaration"
	"deptrim/internal/syntax"
)

// Detect walks tree once and returns one signal per binding.
func (d *Detector) Detect(tree *syntax.Tree, kind collector.FileKind, bindings []declaration.Binding) []Signal {
	return d.DetectNode(tree.Root(), tree.Source(), kind, bindings)
}

// DetectNode is Detect on a bare root node.
func (d *Detector) DetectNode(root *sitter.Node, source []byte, kind collector.FileKind, bindings []declaration.Binding) []Signal {
	refs := newReferences()
	if root != nil {
		collectReferences(root, source, refs)
	}
	return d.classify(refs, kind == collector.KindMarkup, bindings)
}

// collectReferences records identifiers in use positions:
//
//	sym.member  sym(...)  new sym(...)  await sym(...)  sym.method(...)  <Sym/>
//
// Declarations, parameters and plain reads are not uses.
func collectReferences(node *sitter.Node, source []byte, refs *references) {
	switch node.Type() {
	case "member_expression":
		addBase(memberObject(node), source, refs)
	case "call_expression":
		if fn := node.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" {
			// require('x') declares, it does not use
			if name := fn.Content(source); name != "require" {
				refs.add(name)
			}
		}
	case "new_expression":
		addBase(node.ChildByFieldName("constructor"), source, refs)
	case "jsx_element", "jsx_fragment":
		refs.markup = true
	case "jsx_self_closing_element":
		refs.markup = true
		addElementName(node.ChildByFieldName("name"), source, refs)
	case "jsx_opening_element":
		addElementName(node.ChildByFieldName("name"), source, refs)
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child != nil {
			collectReferences(child, source, refs)
		}
	}
}

// addBase records node when it is a bare identifier. Nested member
// expressions are visited on their own.
func addBase(node *sitter.Node, source []byte, refs *references) {
	if node == nil {
		return
	}
	if node.Type() == "identifier" {
		refs.add(node.Content(source))
	}
}

// memberObject returns the object of a member expression. Element names
// like <motion.div> are aliased member expressions without field names.
func memberObject(node *sitter.Node) *sitter.Node {
	if obj := node.ChildByFieldName("object"); obj != nil {
		return obj
	}
	if node.NamedChildCount() > 0 {
		return node.NamedChild(0)
	}
	return nil
}

// addElementName records component names. Lower-case names are intrinsic
// elements (div, span) and member names (Foo.Bar) are covered by the
// member_expression visit, except for grammars that emit nested_identifier.
func addElementName(node *sitter.Node, source []byte, refs *references) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "identifier":
		name := node.Content(source)
		if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
			refs.add(name)
		}
	case "nested_identifier":
		if node.NamedChildCount() > 0 {
			first := node.NamedChild(0)
			for first != nil && first.Type() == "nested_identifier" && first.NamedChildCount() > 0 {
				first = first.NamedChild(0)
			}
			addBase(first, source, refs)
		}
	}
}
