package project

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDetectPackageManager(t *testing.T) {
	tests := []struct {
		name         string
		files        []string
		wantManager  string
		wantLockfile string
		wantOK       bool
	}{
		{"npm", []string{"package-lock.json"}, ManagerNPM, "package-lock.json", true},
		{"shrinkwrap", []string{"npm-shrinkwrap.json"}, ManagerNPM, "npm-shrinkwrap.json", true},
		{"yarn", []string{"yarn.lock"}, ManagerYarn, "yarn.lock", true},
		{"pnpm", []string{"pnpm-lock.yaml"}, ManagerPNPM, "pnpm-lock.yaml", true},
		{"migrating from npm", []string{"package-lock.json", "pnpm-lock.yaml"}, ManagerPNPM, "pnpm-lock.yaml", true},
		{"none", nil, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			touch(t, root, tt.files...)

			manager, lockfile, ok := DetectPackageManager(root)
			if manager != tt.wantManager || lockfile != tt.wantLockfile || ok != tt.wantOK {
				t.Errorf("DetectPackageManager() = (%q, %q, %v), want (%q, %q, %v)",
					manager, lockfile, ok, tt.wantManager, tt.wantLockfile, tt.wantOK)
			}
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  Language
	}{
		{"no manifest", []string{"index.js"}, LangUnknown},
		{"javascript", []string{"package.json", "index.js"}, LangJavaScript},
		{"tsconfig", []string{"package.json", "tsconfig.json"}, LangTypeScript},
		{"ts in src", []string{"package.json", "src/main.ts"}, LangTypeScript},
		{"ts too deep", []string{"package.json", "src/lib/main.ts"}, LangJavaScript},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			touch(t, root, tt.files...)

			if got := DetectLanguage(root); got != tt.want {
				t.Errorf("DetectLanguage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetect_FallsBackToNPM(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "package.json")

	info := Detect(root)
	if info.PackageManager != ManagerNPM || info.Lockfile != "" {
		t.Errorf("Detect() = %+v, want npm without lockfile", info)
	}
	if info.Language != LangJavaScript {
		t.Errorf("Language = %q, want javascript", info.Language)
	}
}
