// Package project detects how a JavaScript project is set up: its package
// manager and whether it is written in TypeScript.
package project

import (
	"os"
	"path/filepath"
)

// Language represents the source language of a project.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangUnknown    Language = "unknown"
)

// Package manager names
const (
	ManagerNPM  = "npm"
	ManagerYarn = "yarn"
	ManagerPNPM = "pnpm"
)

// lockfiles in priority order. A project with several lockfiles is most
// likely migrating away from npm, so npm's is checked last.
var lockfiles = []struct {
	path    string
	manager string
}{
	{"pnpm-lock.yaml", ManagerPNPM},
	{"yarn.lock", ManagerYarn},
	{"package-lock.json", ManagerNPM},
	{"npm-shrinkwrap.json", ManagerNPM},
}

// Info stores detected project information.
type Info struct {
	Language       Language `json:"language"`
	PackageManager string   `json:"packageManager"`
	Lockfile       string   `json:"lockfile,omitempty"`
}

// Detect inspects root. Missing lockfiles fall back to npm.
func Detect(root string) Info {
	info := Info{Language: DetectLanguage(root), PackageManager: ManagerNPM}
	if manager, lockfile, ok := DetectPackageManager(root); ok {
		info.PackageManager = manager
		info.Lockfile = lockfile
	}
	return info
}

// DetectPackageManager finds the package manager from the lockfile in root.
// Returns the manager, the lockfile name, and whether detection succeeded.
func DetectPackageManager(root string) (string, string, bool) {
	for _, l := range lockfiles {
		if _, err := os.Stat(filepath.Join(root, l.path)); err == nil {
			return l.manager, l.path, true
		}
	}
	return "", "", false
}

// DetectLanguage reports whether a package.json project uses TypeScript.
func DetectLanguage(root string) Language {
	if _, err := os.Stat(filepath.Join(root, "package.json")); err != nil {
		return LangUnknown
	}
	// Check for tsconfig.json
	if _, err := os.Stat(filepath.Join(root, "tsconfig.json")); err == nil {
		return LangTypeScript
	}
	// Check for .ts files
	if hasFileWithExt(root, ".ts") {
		return LangTypeScript
	}
	return LangJavaScript
}

// hasFileWithExt checks if any file with the given extension exists in the
// root or its src directory.
func hasFileWithExt(root, ext string) bool {
	for _, dir := range []string{root, filepath.Join(root, "src")} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ext {
				return true
			}
		}
	}
	return false
}
