package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// go test ./... -run Golden -update rewrites the expected files.
var updateGolden = flag.Bool("update", false, "rewrite golden files under testdata/fixtures/*/expected")

// CompareGolden fails the test with a line diff when got differs from the
// fixture's expected/<name>. With -update it writes got instead.
func CompareGolden(t *testing.T, fixture *FixtureContext, name string, got []byte) {
	t.Helper()

	path := fixture.ExpectedPath(name)
	if *updateGolden {
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatalf("Failed to write golden file: %v", err)
		}
		t.Logf("Updated golden: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("Golden file missing: %s\nRun: go test ./... -run %s -update\n\nGot:\n%s", path, t.Name(), got)
	}
	if err != nil {
		t.Fatalf("Failed to read golden file: %v", err)
	}

	if !bytes.Equal(got, expected) {
		t.Fatalf("Golden mismatch for %s (-expected +got):\n%s\nRun: go test ./... -run %s -update",
			path, lineDiff(string(expected), string(got)), t.Name())
	}
}

// lineDiff renders a line-level diff. Unchanged runs collapse to a count.
func lineDiff(expected, got string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(expected, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		text := strings.SplitAfter(d.Text, "\n")
		if text[len(text)-1] == "" {
			text = text[:len(text)-1]
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			fmt.Fprintf(&out, "  ... %d unchanged\n", len(text))
		case diffmatchpatch.DiffDelete:
			writePrefixed(&out, "-", text)
		case diffmatchpatch.DiffInsert:
			writePrefixed(&out, "+", text)
		}
	}
	return out.String()
}

func writePrefixed(out *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		out.WriteString(prefix)
		out.WriteString(strings.TrimSuffix(line, "\n"))
		out.WriteByte('\n')
	}
}
