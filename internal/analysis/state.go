package analysis

import (
	"maps"
	"slices"

	"deptrim/internal/declaration"
)

// State is the aggregate of the files folded so far. A State is never
// modified: Fold and Merge return a new value and leave their inputs intact,
// so partial states can be built independently and merged in order.
type State struct {
	importOrder []string
	importFiles map[string][]string

	usedOrder []string
	usedFiles map[string][]string

	diagnostics []Diagnostic
	files       int
}

// NewState returns the empty aggregate.
func NewState() State {
	return State{
		importFiles: map[string][]string{},
		usedFiles:   map[string][]string{},
	}
}

// Fold adds one file's facts.
func (s State) Fold(f FileFacts) State {
	next := s.clone()
	next.files++
	next.diagnostics = appendCopy(next.diagnostics, f.Diagnostics...)

	for _, b := range f.Bindings {
		next.addImport(b.Dependency, f.Path)
	}
	for _, sig := range f.Signals {
		if sig.Confirmed {
			next.addUse(sig.Dependency, f.Path)
		}
	}
	return next
}

// Merge appends other, whose files all come after the files of s in
// traversal order. s.Merge(t) equals folding the files of s then those of t.
func (s State) Merge(other State) State {
	next := s.clone()
	next.files += other.files
	next.diagnostics = appendCopy(next.diagnostics, other.diagnostics...)

	for _, dep := range other.importOrder {
		for _, path := range other.importFiles[dep] {
			next.addImport(dep, path)
		}
	}
	for _, dep := range other.usedOrder {
		for _, path := range other.usedFiles[dep] {
			next.addUse(dep, path)
		}
	}
	return next
}

// FilesSeen is the number of files folded, including unreadable ones.
func (s State) FilesSeen() int {
	return s.files
}

// UsedIn returns the files where dep was confirmed used.
func (s State) UsedIn(dep string) []string {
	return slices.Clone(s.usedFiles[dep])
}

// Report classifies the aggregate against the declared dependency list.
// When ignoreBuiltins is set, runtime built-ins (fs, node:path) that the
// manifest does not declare are left out of Used and ImportedButUnused.
func (s State) Report(declared []string, ignoreBuiltins bool) *Report {
	report := &Report{
		Used:              []string{},
		ImportedButUnused: []UnusedImport{},
		NeverImported:     []string{},
		NoSourceFiles:     s.files == 0,
		FilesScanned:      s.files,
		Diagnostics:       slices.Clone(s.diagnostics),
	}
	if report.Diagnostics == nil {
		report.Diagnostics = []Diagnostic{}
	}

	skip := func(dep string) bool {
		return ignoreBuiltins && declaration.IsBuiltin(dep) && !slices.Contains(declared, dep)
	}

	for _, dep := range s.usedOrder {
		if !skip(dep) {
			report.Used = append(report.Used, dep)
		}
	}

	for _, dep := range s.importOrder {
		if _, used := s.usedFiles[dep]; used || skip(dep) {
			continue
		}
		report.ImportedButUnused = append(report.ImportedButUnused, UnusedImport{
			Dependency: dep,
			Files:      slices.Clone(s.importFiles[dep]),
		})
	}

	seen := make(map[string]bool, len(declared))
	for _, dep := range declared {
		if seen[dep] {
			continue
		}
		seen[dep] = true
		if _, imported := s.importFiles[dep]; !imported {
			report.NeverImported = append(report.NeverImported, dep)
		}
	}

	return report
}

// clone copies the maps and clips the slices so appends on the copy
// reallocate instead of writing into arrays shared with s.
func (s State) clone() State {
	return State{
		importOrder: slices.Clip(s.importOrder),
		importFiles: cloneMap(s.importFiles),
		usedOrder:   slices.Clip(s.usedOrder),
		usedFiles:   cloneMap(s.usedFiles),
		diagnostics: slices.Clip(s.diagnostics),
		files:       s.files,
	}
}

func (s *State) addImport(dep, path string) {
	files, ok := s.importFiles[dep]
	if !ok {
		s.importOrder = append(s.importOrder, dep)
	}
	if !slices.Contains(files, path) {
		s.importFiles[dep] = append(slices.Clip(files), path)
	}
}

func (s *State) addUse(dep, path string) {
	files, ok := s.usedFiles[dep]
	if !ok {
		s.usedOrder = append(s.usedOrder, dep)
	}
	if !slices.Contains(files, path) {
		s.usedFiles[dep] = append(slices.Clip(files), path)
	}
}

func cloneMap(m map[string][]string) map[string][]string {
	if m == nil {
		return map[string][]string{}
	}
	return maps.Clone(m)
}

func appendCopy[T any](dst []T, src ...T) []T {
	if len(src) == 0 {
		return dst
	}
	return append(slices.Clip(dst), src...)
}
