package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"deptrim/internal/analysis"
	"deptrim/internal/version"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify declared dependencies as used, imported but unused, or never imported",
	Long: `Analyze the project and report, for every dependency in package.json,
whether the source code actually uses it.

Examples:
  deptrim analyze
  deptrim analyze --dir ./web --format json
  deptrim analyze --no-prefix-match -v`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()
		return runAnalyze(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(ctx context.Context, stdout, stderr io.Writer) error {
	s, err := newSession(stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.analyze(ctx)
	if err != nil {
		return err
	}

	output, err := FormatResponse(newAnalysisResponse(s, report), OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	write(stdout, output)
	return nil
}

// AnalysisResponseCLI is the CLI response format for analyze.
type AnalysisResponseCLI struct {
	Version  string `json:"version" yaml:"version"`
	Root     string `json:"root" yaml:"root"`
	Manifest string `json:"manifest" yaml:"manifest"`

	analysis.Report `yaml:",inline"`

	// Kept are removal candidates protected by the keep list
	Kept []KeptDependencyCLI `json:"kept,omitempty" yaml:"kept,omitempty"`
}

// KeptDependencyCLI is a keep-list entry that matched a removal candidate.
type KeptDependencyCLI struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func newAnalysisResponse(s *session, report *analysis.Report) *AnalysisResponseCLI {
	resp := &AnalysisResponseCLI{
		Version:  version.String(),
		Root:     s.root,
		Manifest: s.cfg.Manifest.Path,
		Report:   *report,
	}
	_, kept := s.keep.Filter(report.RemovalCandidates(s.manifest.Declared()))
	resp.Kept = keptEntries(s, kept)
	return resp
}

func keptEntries(s *session, names []string) []KeptDependencyCLI {
	var out []KeptDependencyCLI
	for _, name := range names {
		out = append(out, KeptDependencyCLI{Name: name, Reason: s.keep.Reason(name)})
	}
	return out
}
