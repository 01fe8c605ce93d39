package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"deptrim/internal/analysis"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatYAML formats the response as YAML
func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *AnalysisResponseCLI:
		return formatAnalysisHuman(v), nil
	case *RemovalResponseCLI:
		return formatRemovalHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatAnalysisHuman(resp *AnalysisResponseCLI) string {
	var b strings.Builder

	b.WriteString(bold(fmt.Sprintf("deptrim v%s", resp.Version)) + "\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(fmt.Sprintf("Project: %s\n", resp.Root))

	if !resp.NoSourceFiles {
		b.WriteString(fmt.Sprintf("Scanned %s %s\n", humanize.Comma(int64(resp.FilesScanned)), plural(resp.FilesScanned, "file", "files")))
	}

	b.WriteString("\n" + bold("Results of the analysis:") + "\n\n")

	// Without source files the used/unused verdicts say nothing.
	if resp.NoSourceFiles {
		b.WriteString(yellow("No JavaScript files found. Is the search path correct?") + "\n")
	} else {
		// Used
		if len(resp.Used) > 0 {
			b.WriteString(green("✅ Used dependencies: ") + strings.Join(resp.Used, ", ") + "\n")
		} else {
			b.WriteString(red("❌ No used dependencies found.") + "\n")
		}

		// Imported but unused
		if len(resp.ImportedButUnused) > 0 {
			b.WriteString("\n" + yellow("⚠️  Imported but unused dependencies:") + "\n")
			b.WriteString(unusedTable(resp.ImportedButUnused) + "\n")
		} else {
			b.WriteString("\n" + green("✅ No dependencies are imported but unused!") + "\n")
		}
	}

	// Never imported
	if len(resp.NeverImported) > 0 {
		b.WriteString("\n" + yellow("⚠️  Unused dependencies (installed but not imported): ") + strings.Join(resp.NeverImported, ", ") + "\n")
	} else {
		b.WriteString("\n" + green("✅ All installed dependencies are imported!") + "\n")
	}

	if len(resp.Kept) > 0 {
		b.WriteString("\n" + fmt.Sprintf("Kept by keep list (%d):\n", len(resp.Kept)))
		for _, k := range resp.Kept {
			b.WriteString("  " + k.Name)
			if k.Reason != "" {
				b.WriteString(faint(" (" + k.Reason + ")"))
			}
			b.WriteString("\n")
		}
	}

	if len(resp.Diagnostics) > 0 {
		b.WriteString("\n" + fmt.Sprintf("Diagnostics (%d):\n", len(resp.Diagnostics)))
		for _, d := range resp.Diagnostics {
			b.WriteString(fmt.Sprintf("  [%s] %s: %s\n", d.Kind, d.Path, d.Message))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// unusedTable renders imported-but-unused dependencies with their files.
func unusedTable(unused []analysis.UnusedImport) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	tbl.AppendHeader(table.Row{"Dependency", "Imported in"})
	for _, u := range unused {
		tbl.AppendRow(table.Row{u.Dependency, strings.Join(u.Files, "\n")})
	}

	return tbl.Render()
}

func formatRemovalHuman(resp *RemovalResponseCLI) string {
	var b strings.Builder

	switch {
	case len(resp.Candidates) == 0:
		b.WriteString(green("No unused dependencies to remove!") + "\n")
	case resp.DryRun:
		b.WriteString(yellow(fmt.Sprintf("Would remove %d unused %s: ", len(resp.Candidates), plural(len(resp.Candidates), "dependency", "dependencies"))) +
			strings.Join(resp.Candidates, ", ") + "\n")
		if resp.Command != "" {
			b.WriteString(faint("  "+resp.Command) + "\n")
		}
	default:
		b.WriteString(yellow("Removing unused dependencies: ") + strings.Join(resp.Candidates, ", ") + "\n")
		b.WriteString(green(fmt.Sprintf("Removed %d %s with %s.", len(resp.Removed), plural(len(resp.Removed), "dependency", "dependencies"), resp.Manager)) + "\n")
	}

	for _, k := range resp.Kept {
		line := "Kept " + k.Name
		if k.Reason != "" {
			line += " (" + k.Reason + ")"
		}
		b.WriteString(faint(line) + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
