package analysis

import (
	"reflect"
	"testing"

	"deptrim/internal/declaration"
	"deptrim/internal/usage"
)

func facts(path string, imported []string, used ...string) FileFacts {
	f := FileFacts{Path: path}
	for _, dep := range imported {
		f.Bindings = append(f.Bindings, declaration.Binding{Dependency: dep, Symbols: []string{dep}, Path: path})
		confirmed := false
		for _, u := range used {
			if u == dep {
				confirmed = true
			}
		}
		f.Signals = append(f.Signals, usage.Signal{Dependency: dep, Path: path, Confirmed: confirmed})
	}
	return f
}

func foldAll(files ...FileFacts) State {
	s := NewState()
	for _, f := range files {
		s = s.Fold(f)
	}
	return s
}

func TestReport_Partition(t *testing.T) {
	declared := []string{"react", "lodash", "axios", "chalk", "left-pad"}
	s := foldAll(
		facts("a.js", []string{"react", "lodash"}, "react"),
		facts("b.js", []string{"axios", "chalk"}, "axios"),
		facts("c.js", []string{"lodash", "uuid"}),
	)

	r := s.Report(declared, true)

	seen := map[string]int{}
	for _, d := range r.Used {
		seen[d]++
	}
	for _, u := range r.ImportedButUnused {
		seen[u.Dependency]++
	}
	for _, d := range r.NeverImported {
		seen[d]++
	}
	for dep, n := range seen {
		if n != 1 {
			t.Errorf("%s appears in %d categories, want exactly 1", dep, n)
		}
	}

	if want := []string{"react", "axios"}; !reflect.DeepEqual(r.Used, want) {
		t.Errorf("Used = %v, want %v", r.Used, want)
	}
	wantUnused := []UnusedImport{
		{Dependency: "lodash", Files: []string{"a.js", "c.js"}},
		{Dependency: "chalk", Files: []string{"b.js"}},
		{Dependency: "uuid", Files: []string{"c.js"}},
	}
	if !reflect.DeepEqual(r.ImportedButUnused, wantUnused) {
		t.Errorf("ImportedButUnused = %+v, want %+v", r.ImportedButUnused, wantUnused)
	}
	if want := []string{"left-pad"}; !reflect.DeepEqual(r.NeverImported, want) {
		t.Errorf("NeverImported = %v, want %v", r.NeverImported, want)
	}
}

func TestReport_UsageAnywhereOverrides(t *testing.T) {
	s := foldAll(
		facts("a.js", []string{"lodash"}),
		facts("b.js", []string{"lodash"}),
		facts("c.js", []string{"lodash"}, "lodash"),
	)

	r := s.Report([]string{"lodash"}, true)
	if len(r.ImportedButUnused) != 0 {
		t.Errorf("lodash is used in c.js and must not be imported-but-unused: %+v", r.ImportedButUnused)
	}
	if !reflect.DeepEqual(r.Used, []string{"lodash"}) {
		t.Errorf("Used = %v", r.Used)
	}
	if got := s.UsedIn("lodash"); !reflect.DeepEqual(got, []string{"c.js"}) {
		t.Errorf("UsedIn = %v", got)
	}
}

func TestReport_NeverImportedIgnoresUsage(t *testing.T) {
	// A dependency imported but unconfirmed is not "never imported"
	s := foldAll(facts("a.js", []string{"chalk"}))
	r := s.Report([]string{"chalk", "ora", "ora"}, true)

	if !reflect.DeepEqual(r.NeverImported, []string{"ora"}) {
		t.Errorf("NeverImported = %v, want [ora]", r.NeverImported)
	}
}

func TestReport_Empty(t *testing.T) {
	r := NewState().Report([]string{"a", "b"}, true)

	if !r.NoSourceFiles {
		t.Error("NoSourceFiles should be set for an empty state")
	}
	if len(r.Used) != 0 || len(r.ImportedButUnused) != 0 {
		t.Errorf("empty state should have no used or unused entries: %+v", r)
	}
	if !reflect.DeepEqual(r.NeverImported, []string{"a", "b"}) {
		t.Errorf("NeverImported = %v, want declared list", r.NeverImported)
	}
	if r.Used == nil || r.ImportedButUnused == nil || r.Diagnostics == nil {
		t.Error("report slices should be empty, not nil, so they encode as []")
	}
}

func TestReport_FilesWithoutImportsAreNotEmpty(t *testing.T) {
	r := foldAll(FileFacts{Path: "plain.js"}).Report(nil, true)
	if r.NoSourceFiles {
		t.Error("a scanned file without imports is not an empty project")
	}
	if r.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", r.FilesScanned)
	}
}

func TestReport_Builtins(t *testing.T) {
	s := foldAll(facts("a.js", []string{"fs", "node:path", "events", "axios"}, "fs", "axios"))

	r := s.Report([]string{"axios", "events"}, true)
	if !reflect.DeepEqual(r.Used, []string{"axios"}) {
		t.Errorf("Used = %v, want builtins filtered", r.Used)
	}
	// events is declared, so it is the npm polyfill and stays
	if len(r.ImportedButUnused) != 1 || r.ImportedButUnused[0].Dependency != "events" {
		t.Errorf("ImportedButUnused = %+v, want only events", r.ImportedButUnused)
	}

	r = s.Report(nil, false)
	if !reflect.DeepEqual(r.Used, []string{"fs", "axios"}) {
		t.Errorf("Used = %v, want builtins kept", r.Used)
	}
}

func TestFold_DoesNotModifyReceiver(t *testing.T) {
	base := foldAll(facts("a.js", []string{"lodash"}))
	before := base.Report([]string{"lodash"}, true)

	_ = base.Fold(facts("b.js", []string{"lodash", "react"}, "lodash"))
	_ = base.Fold(facts("c.js", []string{"axios"}))

	after := base.Report([]string{"lodash"}, true)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Fold modified its receiver:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestMerge_EqualsSequentialFold(t *testing.T) {
	files := []FileFacts{
		facts("a.js", []string{"react", "lodash"}),
		facts("b.js", []string{"lodash", "axios"}, "axios"),
		{Path: "c.js", Diagnostics: []Diagnostic{{Path: "c.js", Kind: DiagRead, Message: "denied"}}},
		facts("d.js", []string{"react", "chalk"}, "react"),
		facts("e.js", []string{"uuid"}, "uuid"),
	}
	declared := []string{"react", "lodash", "axios", "chalk", "uuid", "ora"}

	want := foldAll(files...).Report(declared, true)

	for split := 0; split <= len(files); split++ {
		left := foldAll(files[:split]...)
		right := foldAll(files[split:]...)
		got := left.Merge(right).Report(declared, true)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("split at %d:\ngot  %+v\nwant %+v", split, got, want)
		}
	}
}

func TestReport_RemovalCandidates(t *testing.T) {
	s := foldAll(
		facts("a.js", []string{"react", "lodash"}, "react"),
		facts("b.js", []string{"uuid"}),
	)
	declared := []string{"ora", "react", "lodash"}

	r := s.Report(declared, true)
	got := r.RemovalCandidates(declared)
	// uuid is unused but not declared, so it cannot be removed
	if want := []string{"ora", "lodash"}; !reflect.DeepEqual(got, want) {
		t.Errorf("RemovalCandidates = %v, want %v", got, want)
	}
}
