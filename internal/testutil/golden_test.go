package testutil

import (
	"strings"
	"testing"
)

func TestLineDiff(t *testing.T) {
	got := lineDiff("a\nb\nc\nd\n", "a\nx\nc\nd\n")

	want := "  ... 1 unchanged\n-b\n+x\n  ... 2 unchanged\n"
	if got != want {
		t.Errorf("lineDiff =\n%s\nwant\n%s", got, want)
	}
}

func TestLineDiff_MissingTrailingNewline(t *testing.T) {
	got := lineDiff("a\n", "a\nb")
	if !strings.Contains(got, "+b\n") {
		t.Errorf("appended line missing from diff:\n%s", got)
	}
}

func TestLineDiff_Equal(t *testing.T) {
	if got := lineDiff("same\n", "same\n"); strings.ContainsAny(got, "+-") {
		t.Errorf("equal inputs should produce no changes:\n%s", got)
	}
}

func TestWriteTree(t *testing.T) {
	root := WriteTree(t, map[string]string{
		"package.json":     "{}",
		"src/lib/index.js": "export {}",
	})

	fixture := &FixtureContext{Root: root, ExpectedDir: root}
	if got := fixture.ExpectedPath("x.json"); !strings.HasSuffix(got, "x.json") {
		t.Errorf("ExpectedPath = %q", got)
	}
}
