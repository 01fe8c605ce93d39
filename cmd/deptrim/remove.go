package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"deptrim/internal/manifest"
	"deptrim/internal/project"
)

var removeDryRun bool

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Uninstall dependencies that are never imported or imported but unused",
	Long: `Run the analysis, then uninstall every declared dependency that is never
imported or imported but unused, through the configured package manager.

package.json is only edited after the package manager succeeded. Entries
listed in DEPTRIM.toml are never removed:

  [[keep]]
  name = "typescript"
  reason = "compiler"

Examples:
  deptrim remove --dry-run
  deptrim remove --package-manager pnpm

With packageManager set to "auto" (the default), the manager is picked from
the lockfile: pnpm-lock.yaml, yarn.lock, then package-lock.json, else npm.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()
		return runRemove(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), nil)
	},
}

func init() {
	removeCmd.Flags().BoolVar(&removeDryRun, "dry-run", false, "Show what would be removed without changing anything")
	rootCmd.AddCommand(removeCmd)
}

// runRemove removes unused dependencies. A nil pm selects the configured
// package manager executable.
func runRemove(ctx context.Context, stdout, stderr io.Writer, pm manifest.PackageManager) error {
	s, err := newSession(stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.analyze(ctx)
	if err != nil {
		return err
	}

	candidates, kept := s.keep.Filter(report.RemovalCandidates(s.manifest.Declared()))

	if pm == nil {
		cmd, err := manifest.NewCommand(s.packageManager())
		if err != nil {
			return err
		}
		pm = cmd
	}

	resp := &RemovalResponseCLI{
		DryRun:     removeDryRun,
		Manager:    pm.Name(),
		Candidates: nonNil(candidates),
		Removed:    []string{},
		Kept:       keptEntries(s, kept),
	}
	if cl, ok := pm.(interface{ CommandLine([]string) string }); ok && len(candidates) > 0 {
		resp.Command = cl.CommandLine(candidates)
	}

	if !removeDryRun && len(candidates) > 0 {
		removed, err := manifest.NewRemover(pm, s.logger).Remove(ctx, s.manifest.Path, candidates)
		if err != nil {
			return err
		}
		resp.Removed = nonNil(removed)
	}

	output, err := FormatResponse(resp, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	write(stdout, output)
	return nil
}

// RemovalResponseCLI is the CLI response format for remove.
type RemovalResponseCLI struct {
	DryRun     bool                `json:"dryRun" yaml:"dryRun"`
	Manager    string              `json:"manager" yaml:"manager"`
	Command    string              `json:"command,omitempty" yaml:"command,omitempty"`
	Candidates []string            `json:"candidates" yaml:"candidates"`
	Removed    []string            `json:"removed" yaml:"removed"`
	Kept       []KeptDependencyCLI `json:"kept,omitempty" yaml:"kept,omitempty"`
}

// packageManager resolves "auto" from the lockfile next to package.json.
func (s *session) packageManager() string {
	name := s.cfg.Manifest.PackageManager
	if name != "auto" {
		return name
	}
	info := project.Detect(filepath.Dir(s.manifest.Path))
	if info.Lockfile != "" {
		s.logger.Debug("Detected package manager", "manager", info.PackageManager, "lockfile", info.Lockfile)
	}
	return info.PackageManager
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
