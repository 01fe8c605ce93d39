package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"deptrim/internal/slogutil"
)

// ConfigDir is the per-project directory holding config.json
const ConfigDir = ".deptrim"

// EnvPrefix prefixes environment overrides, e.g. DEPTRIM_USAGE_PREFIXMATCH=false
const EnvPrefix = "DEPTRIM"

// Config represents the complete deptrim configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Scan     ScanConfig     `json:"scan" mapstructure:"scan"`
	Usage    UsageConfig    `json:"usage" mapstructure:"usage"`
	Manifest ManifestConfig `json:"manifest" mapstructure:"manifest"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// ScanConfig controls source file discovery and declaration extraction
type ScanConfig struct {
	// Extensions lists the file extensions considered source files
	Extensions []string `json:"extensions" mapstructure:"extensions"`

	// IgnoreDirs are directory basenames that are never descended into
	IgnoreDirs []string `json:"ignoreDirs" mapstructure:"ignoreDirs"`

	// MaxFileSize is a humanized size ("1MB"); larger files are skipped
	MaxFileSize string `json:"maxFileSize" mapstructure:"maxFileSize"`

	// Workers is the number of files analyzed concurrently (0 = NumCPU)
	Workers int `json:"workers" mapstructure:"workers"`

	// IgnoreBuiltins drops node built-in modules (fs, node:path, ...) from declarations
	IgnoreBuiltins bool `json:"ignoreBuiltins" mapstructure:"ignoreBuiltins"`
}

// UsageConfig controls how AST references are matched to dependencies
type UsageConfig struct {
	// PrefixMatch accepts any referenced identifier that starts with the
	// package name as usage evidence. Loose: "reactive" counts for "react".
	PrefixMatch bool `json:"prefixMatch" mapstructure:"prefixMatch"`

	// MarkupExtensions are the extensions of files that may contain markup
	MarkupExtensions []string `json:"markupExtensions" mapstructure:"markupExtensions"`

	// MarkupRuntimeSymbol is the symbol compiled markup calls implicitly
	MarkupRuntimeSymbol string `json:"markupRuntimeSymbol" mapstructure:"markupRuntimeSymbol"`

	// MarkupRuntimePackage is the package providing MarkupRuntimeSymbol
	MarkupRuntimePackage string `json:"markupRuntimePackage" mapstructure:"markupRuntimePackage"`
}

// ManifestConfig locates package.json and the package manager
type ManifestConfig struct {
	Path string `json:"path" mapstructure:"path"`

	// PackageManager is npm, yarn, pnpm, or auto (picked from the lockfile)
	PackageManager string `json:"packageManager" mapstructure:"packageManager"`
	KeepFile       string `json:"keepFile" mapstructure:"keepFile"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Scan: ScanConfig{
			Extensions:     []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"},
			IgnoreDirs:     []string{"node_modules", ".git", "dist", "build", "coverage"},
			MaxFileSize:    "1MB",
			Workers:        runtime.NumCPU(),
			IgnoreBuiltins: true,
		},
		Usage: UsageConfig{
			PrefixMatch:          true,
			MarkupExtensions:     []string{".jsx", ".tsx"},
			MarkupRuntimeSymbol:  "React",
			MarkupRuntimePackage: "react",
		},
		Manifest: ManifestConfig{
			Path:           "package.json",
			PackageManager: "auto",
			KeepFile:       "DEPTRIM.toml",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

// setDefaults registers every default so partial files and env vars merge
// over them instead of zeroing the rest.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("scan.extensions", d.Scan.Extensions)
	v.SetDefault("scan.ignoreDirs", d.Scan.IgnoreDirs)
	v.SetDefault("scan.maxFileSize", d.Scan.MaxFileSize)
	v.SetDefault("scan.workers", d.Scan.Workers)
	v.SetDefault("scan.ignoreBuiltins", d.Scan.IgnoreBuiltins)
	v.SetDefault("usage.prefixMatch", d.Usage.PrefixMatch)
	v.SetDefault("usage.markupExtensions", d.Usage.MarkupExtensions)
	v.SetDefault("usage.markupRuntimeSymbol", d.Usage.MarkupRuntimeSymbol)
	v.SetDefault("usage.markupRuntimePackage", d.Usage.MarkupRuntimePackage)
	v.SetDefault("manifest.path", d.Manifest.Path)
	v.SetDefault("manifest.packageManager", d.Manifest.PackageManager)
	v.SetDefault("manifest.keepFile", d.Manifest.KeepFile)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
}

// LoadConfig loads configuration from <root>/.deptrim/config.json.
// A missing file is not an error; defaults and DEPTRIM_* env vars still apply.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ConfigDir))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := checkSchema(filepath.Join(root, ConfigDir, "config.json")); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <root>/.deptrim/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if len(c.Scan.Extensions) == 0 {
		return &ConfigError{Field: "scan.extensions", Message: "at least one extension is required"}
	}
	for _, ext := range append(append([]string{}, c.Scan.Extensions...), c.Usage.MarkupExtensions...) {
		if !strings.HasPrefix(ext, ".") {
			return &ConfigError{Field: "extensions", Message: "extension " + ext + " must start with '.'"}
		}
	}
	if _, err := c.Scan.MaxFileSizeBytes(); err != nil {
		return &ConfigError{Field: "scan.maxFileSize", Message: err.Error()}
	}
	if c.Scan.Workers < 0 {
		return &ConfigError{Field: "scan.workers", Message: "must not be negative"}
	}
	if c.Usage.MarkupRuntimeSymbol == "" {
		return &ConfigError{Field: "usage.markupRuntimeSymbol", Message: "must not be empty"}
	}
	switch c.Manifest.PackageManager {
	case "auto", "npm", "yarn", "pnpm":
	default:
		return &ConfigError{Field: "manifest.packageManager", Message: "must be one of auto, npm, yarn, pnpm"}
	}
	if _, ok := slogutil.ParseLevel(c.Logging.Level); !ok {
		return &ConfigError{Field: "logging.level", Message: "unknown level " + c.Logging.Level}
	}
	switch c.Logging.Format {
	case string(slogutil.FormatHuman), string(slogutil.FormatJSON):
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	return nil
}

// MaxFileSizeBytes parses MaxFileSize; an empty value means no limit.
func (s ScanConfig) MaxFileSizeBytes() (uint64, error) {
	if strings.TrimSpace(s.MaxFileSize) == "" {
		return 0, nil
	}
	return humanize.ParseBytes(s.MaxFileSize)
}

// EffectiveWorkers returns Workers, or NumCPU when unset.
func (s ScanConfig) EffectiveWorkers() int {
	if s.Workers <= 0 {
		return runtime.NumCPU()
	}
	return s.Workers
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
