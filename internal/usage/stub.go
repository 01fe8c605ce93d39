//go:build !cgo

package usage

import (
	"deptrim/internal/collector"
	"deptrim/internal/declaration"
	"deptrim/internal/syntax"
)

// Detect without CGO has no tree to walk; every binding stays unconfirmed.
func (d *Detector) Detect(tree *syntax.Tree, kind collector.FileKind, bindings []declaration.Binding) []Signal {
	return d.classify(newReferences(), false, bindings)
}
