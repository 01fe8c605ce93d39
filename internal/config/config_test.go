package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}

	// .js must stay in the set alongside the TypeScript and JSX extensions
	found := false
	for _, ext := range cfg.Scan.Extensions {
		if ext == ".js" {
			found = true
		}
	}
	if !found {
		t.Error("default extensions should include .js")
	}

	if cfg.Scan.IgnoreDirs[0] != "node_modules" {
		t.Errorf("first ignored dir = %q, want node_modules", cfg.Scan.IgnoreDirs[0])
	}
	if !cfg.Usage.PrefixMatch {
		t.Error("prefix matching should be on by default")
	}
	if cfg.Usage.MarkupRuntimeSymbol != "React" {
		t.Errorf("MarkupRuntimeSymbol = %q, want React", cfg.Usage.MarkupRuntimeSymbol)
	}
	if cfg.Manifest.PackageManager != "auto" {
		t.Errorf("PackageManager = %q, want auto", cfg.Manifest.PackageManager)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad version", func(c *Config) { c.Version = 7 }, "version"},
		{"no extensions", func(c *Config) { c.Scan.Extensions = nil }, "scan.extensions"},
		{"extension without dot", func(c *Config) { c.Scan.Extensions = []string{"js"} }, "extensions"},
		{"markup extension without dot", func(c *Config) { c.Usage.MarkupExtensions = []string{"tsx"} }, "extensions"},
		{"bad size", func(c *Config) { c.Scan.MaxFileSize = "lots" }, "scan.maxFileSize"},
		{"negative workers", func(c *Config) { c.Scan.Workers = -1 }, "scan.workers"},
		{"empty runtime symbol", func(c *Config) { c.Usage.MarkupRuntimeSymbol = "" }, "usage.markupRuntimeSymbol"},
		{"explicit package manager", func(c *Config) { c.Manifest.PackageManager = "yarn" }, ""},
		{"unknown package manager", func(c *Config) { c.Manifest.PackageManager = "bun" }, "manifest.packageManager"},
		{"silent logging", func(c *Config) { c.Logging.Level = "silent" }, ""},
		{"unknown log level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}

			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantErr {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantErr)
			}
		})
	}
}

func TestScanConfig_MaxFileSizeBytes(t *testing.T) {
	tests := []struct {
		input string
		want  uint64
	}{
		{"1MB", 1000000},
		{"1MiB", 1048576},
		{"512kB", 512000},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ScanConfig{MaxFileSize: tt.input}.MaxFileSizeBytes()
			if err != nil {
				t.Fatalf("MaxFileSizeBytes(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("MaxFileSizeBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestEffectiveWorkers(t *testing.T) {
	if (ScanConfig{Workers: 3}).EffectiveWorkers() != 3 {
		t.Error("explicit worker count should be kept")
	}
	if (ScanConfig{}).EffectiveWorkers() < 1 {
		t.Error("unset worker count should fall back to at least one")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	def := DefaultConfig()
	if cfg.Manifest.Path != def.Manifest.Path {
		t.Errorf("Manifest.Path = %q, want %q", cfg.Manifest.Path, def.Manifest.Path)
	}
	if len(cfg.Scan.Extensions) != len(def.Scan.Extensions) {
		t.Errorf("Extensions = %v, want %v", cfg.Scan.Extensions, def.Scan.Extensions)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"usage": {"prefixMatch": false, "markupRuntimeSymbol": "h"}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Usage.PrefixMatch {
		t.Error("prefixMatch should be overridden to false")
	}
	if cfg.Usage.MarkupRuntimeSymbol != "h" {
		t.Errorf("MarkupRuntimeSymbol = %q, want h", cfg.Usage.MarkupRuntimeSymbol)
	}
	if cfg.Usage.MarkupRuntimePackage != "react" {
		t.Errorf("MarkupRuntimePackage = %q, want default react", cfg.Usage.MarkupRuntimePackage)
	}
	if cfg.Manifest.PackageManager != "auto" {
		t.Errorf("PackageManager = %q, want default auto", cfg.Manifest.PackageManager)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("DEPTRIM_MANIFEST_PACKAGEMANAGER", "pnpm")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Manifest.PackageManager != "pnpm" {
		t.Errorf("PackageManager = %q, want pnpm from env", cfg.Manifest.PackageManager)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(root); err == nil {
		t.Error("expected an error for malformed config.json")
	}
}

func TestLoadConfig_SchemaRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField string
	}{
		{"misspelled key", `{"usage": {"prefixMatches": false}}`, "usage"},
		{"unknown section", `{"output": {}}`, "(root)"},
		{"wrong type", `{"scan": {"workers": "four"}}`, "scan.workers"},
		{"negative workers", `{"scan": {"workers": -2}}`, "scan.workers"},
		{"unknown manager", `{"manifest": {"packageManager": "bun"}}`, "manifest.packageManager"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			dir := filepath.Join(root, ConfigDir)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := LoadConfig(root)
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("LoadConfig error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q (%s)", cfgErr.Field, tt.wantField, cfgErr.Message)
			}
		})
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Scan.Workers = 2
	cfg.Usage.PrefixMatch = false

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Scan.Workers != 2 {
		t.Errorf("Workers = %d, want 2", loaded.Scan.Workers)
	}
	if loaded.Usage.PrefixMatch {
		t.Error("PrefixMatch should round-trip as false")
	}
}
