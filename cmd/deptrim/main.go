package main

import (
	"fmt"
	"os"

	"deptrim/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if coded, ok := err.(*errors.Error); ok {
			for _, fix := range coded.SuggestedFixes {
				fmt.Fprintf(os.Stderr, "  hint: %s\n", fixHint(fix))
			}
		}
		os.Exit(1)
	}
}

func fixHint(fix errors.FixAction) string {
	switch {
	case fix.Command != "":
		return fix.Description + " (" + fix.Command + ")"
	case fix.Path != "":
		return fix.Description + " (" + fix.Path + ")"
	default:
		return fix.Description
	}
}
