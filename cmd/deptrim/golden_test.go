//go:build cgo

package main

import (
	"context"
	"path/filepath"
	"testing"

	"deptrim/internal/analysis"
	"deptrim/internal/config"
	"deptrim/internal/manifest"
	"deptrim/internal/slogutil"
	"deptrim/internal/testutil"
)

func TestGolden_WebappReport(t *testing.T) {
	fixture := testutil.LoadFixture(t, "webapp")

	m, err := manifest.Load(filepath.Join(fixture.Root, manifest.FileName))
	if err != nil {
		t.Fatalf("Load manifest: %v", err)
	}

	cfg := config.DefaultConfig()
	report, err := analysis.NewAnalyzer(cfg, slogutil.NewDiscardLogger()).Run(context.Background(), fixture.Root, m.Declared())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Parser messages carry grammar-specific positions
	for i := range report.Diagnostics {
		report.Diagnostics[i].Message = ""
	}

	out, err := formatJSON(report)
	if err != nil {
		t.Fatal(err)
	}
	testutil.CompareGolden(t, fixture, "report.json", []byte(out+"\n"))
}
