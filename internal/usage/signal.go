// Package usage confirms, on a parsed syntax tree, which declared
// dependencies a file actually references.
package usage

import (
	"strings"

	"deptrim/internal/config"
	"deptrim/internal/declaration"
)

// Evidence names what confirmed a signal
type Evidence string

const (
	// EvidenceNone means the dependency was not referenced
	EvidenceNone Evidence = ""
	// EvidenceSymbol means a bound symbol was referenced
	EvidenceSymbol Evidence = "symbol"
	// EvidencePrefix means a referenced identifier starts with the package name
	EvidencePrefix Evidence = "prefix"
	// EvidenceMarkup means markup implicitly calls the runtime symbol
	EvidenceMarkup Evidence = "markup"
)

// Signal is the usage verdict for one binding in one file.
type Signal struct {
	Dependency string   `json:"dependency"`
	Path       string   `json:"path"`
	Confirmed  bool     `json:"confirmed"`
	Evidence   Evidence `json:"evidence,omitempty"`
}

// Detector matches references found in a syntax tree against bindings.
type Detector struct {
	prefixMatch   bool
	markupSymbol  string
	markupPackage string
}

// NewDetector creates a detector from the usage configuration.
func NewDetector(cfg config.UsageConfig) *Detector {
	return &Detector{
		prefixMatch:   cfg.PrefixMatch,
		markupSymbol:  cfg.MarkupRuntimeSymbol,
		markupPackage: cfg.MarkupRuntimePackage,
	}
}

// references is what one walk over a tree collects.
type references struct {
	// names are identifiers seen in a use position
	names map[string]bool
	// order keeps names in source order for prefix matching
	order []string
	// markup is set when any element or fragment node exists
	markup bool
}

func newReferences() *references {
	return &references{names: make(map[string]bool)}
}

func (r *references) add(name string) {
	if name == "" || r.names[name] {
		return
	}
	r.names[name] = true
	r.order = append(r.order, name)
}

// classify produces one signal per binding, in binding order.
func (d *Detector) classify(refs *references, markupFile bool, bindings []declaration.Binding) []Signal {
	signals := make([]Signal, 0, len(bindings))
	for i := range bindings {
		b := &bindings[i]
		ev := d.evidence(refs, markupFile, b)
		signals = append(signals, Signal{
			Dependency: b.Dependency,
			Path:       b.Path,
			Confirmed:  ev != EvidenceNone,
			Evidence:   ev,
		})
	}
	return signals
}

func (d *Detector) evidence(refs *references, markupFile bool, b *declaration.Binding) Evidence {
	for _, sym := range b.Symbols {
		if refs.names[sym] {
			return EvidenceSymbol
		}
	}

	if d.prefixMatch && isIdentifierPrefix(b.Dependency) {
		for _, name := range refs.order {
			if strings.HasPrefix(name, b.Dependency) {
				return EvidencePrefix
			}
		}
	}

	if markupFile && refs.markup && d.isMarkupRuntime(b) {
		return EvidenceMarkup
	}

	return EvidenceNone
}

func (d *Detector) isMarkupRuntime(b *declaration.Binding) bool {
	if d.markupSymbol != "" && b.HasSymbol(d.markupSymbol) {
		return true
	}
	return d.markupPackage != "" && b.Dependency == d.markupPackage
}

// isIdentifierPrefix reports whether a package name could start an
// identifier at all; "@scope/x" or "fs-extra" never can.
func isIdentifierPrefix(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
