// Package analysis classifies declared dependencies as used, imported but
// unused, or never imported, across every source file of a project.
package analysis

import (
	"slices"

	"deptrim/internal/declaration"
	"deptrim/internal/usage"
)

// DiagnosticKind classifies a per-file problem
type DiagnosticKind string

const (
	// DiagRead means the file could not be read
	DiagRead DiagnosticKind = "read"
	// DiagParse means the file did not parse; its declarations still count
	DiagParse DiagnosticKind = "parse"
	// DiagSkipped means the file was deliberately not analyzed (too large)
	DiagSkipped DiagnosticKind = "skipped"
)

// Diagnostic is a non-fatal problem with one file.
type Diagnostic struct {
	Path    string         `json:"path" yaml:"path"`
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	Message string         `json:"message" yaml:"message"`
}

// FileFacts is everything one file contributes to the aggregate.
type FileFacts struct {
	// Path is root-relative
	Path string
	// Bindings come from text extraction and survive parse failures
	Bindings []declaration.Binding
	// Signals is empty when the file did not parse
	Signals []usage.Signal
	// Diagnostics are the problems hit while analyzing this file
	Diagnostics []Diagnostic
}

// UnusedImport is a dependency imported somewhere but referenced nowhere.
type UnusedImport struct {
	Dependency string   `json:"dependency" yaml:"dependency"`
	Files      []string `json:"files" yaml:"files"`
}

// Report is the classification of one run. Every name appears in at most
// one of Used, ImportedButUnused and NeverImported.
type Report struct {
	// Used is in first-confirmation order
	Used []string `json:"used" yaml:"used"`

	// ImportedButUnused is in first-import order, files in traversal order
	ImportedButUnused []UnusedImport `json:"importedButUnused" yaml:"importedButUnused"`

	// NeverImported is in manifest order
	NeverImported []string `json:"neverImported" yaml:"neverImported"`

	// NoSourceFiles is set when the project had no candidate files at all
	NoSourceFiles bool `json:"noSourceFiles" yaml:"noSourceFiles"`

	FilesScanned int          `json:"filesScanned" yaml:"filesScanned"`
	Diagnostics  []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// UnusedNames returns the dependency names of ImportedButUnused.
func (r *Report) UnusedNames() []string {
	names := make([]string, 0, len(r.ImportedButUnused))
	for _, u := range r.ImportedButUnused {
		names = append(names, u.Dependency)
	}
	return names
}

// RemovalCandidates returns the declared names that are never imported or
// imported but unused, in manifest order.
func (r *Report) RemovalCandidates(declared []string) []string {
	unused := r.UnusedNames()
	var out []string
	for _, name := range declared {
		if slices.Contains(out, name) {
			continue
		}
		if slices.Contains(r.NeverImported, name) || slices.Contains(unused, name) {
			out = append(out, name)
		}
	}
	return out
}
