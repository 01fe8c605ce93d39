package main

import (
	"github.com/spf13/cobra"

	"deptrim/internal/syntax"
	"deptrim/internal/version"
)

var (
	// dirFlag is the project root; defaults to the working directory
	dirFlag            string
	formatFlag         string
	verboseFlag        int
	quietFlag          bool
	noColorFlag        bool
	noPrefixMatchFlag  bool
	workersFlag        int
	packageManagerFlag string
	logFileFlag        string
)

var rootCmd = &cobra.Command{
	Use:   "deptrim",
	Short: "deptrim - find and remove unused JavaScript dependencies",
	Long: `deptrim scans the JavaScript and TypeScript sources of a project and checks
every dependency declared in package.json against the code:

- used: a bound symbol is referenced (called, constructed, dereferenced)
- imported but unused: imported somewhere, referenced nowhere
- never imported: declared in package.json only

Declarations are found by text matching; usage is confirmed on a syntax tree.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	tmpl := "deptrim version {{.Version}}\n"
	if !syntax.IsAvailable() {
		tmpl += "built without cgo: usage detection is disabled\n"
	}
	rootCmd.SetVersionTemplate(tmpl)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dirFlag, "dir", "", "Project root (default: current directory)")
	flags.StringVar(&formatFlag, "format", "human", "Output format (human, json, yaml)")
	flags.CountVarP(&verboseFlag, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	flags.BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all logs")
	flags.BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	flags.BoolVar(&noPrefixMatchFlag, "no-prefix-match", false, "Only count exact bound symbols as usage")
	flags.IntVar(&workersFlag, "workers", 0, "Files analyzed concurrently (default: config or CPU count)")
	flags.StringVar(&packageManagerFlag, "package-manager", "", "Package manager used for removal (auto, npm, yarn, pnpm)")
	flags.StringVar(&logFileFlag, "log-file", "", "Also append logs to this file")
}
