package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	toml "github.com/pelletier/go-toml/v2"

	"deptrim/internal/paths"
)

// KeepFileName is the default name of the keep list
const KeepFileName = "DEPTRIM.toml"

// KeepEntry is a dependency that must never be removed
type KeepEntry struct {
	// Name is the package name as declared in package.json
	Name string `toml:"name"`

	// Reason documents why it stays (e.g. "loaded by babel.config.js")
	Reason string `toml:"reason,omitempty"`
}

// KeepList represents the root structure of DEPTRIM.toml
type KeepList struct {
	Keep []KeepEntry `toml:"keep"`
}

// ParseKeepList parses a keep list file
func ParseKeepList(path string) (*KeepList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var list KeepList
	if err := toml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	for i, entry := range list.Keep {
		if entry.Name == "" {
			return nil, fmt.Errorf("keep entry %d is missing required 'name' field", i+1)
		}
	}
	return &list, nil
}

// LoadKeepList loads the keep list under root if it exists. A missing file
// yields an empty list; a fileName outside root is an error.
func LoadKeepList(root, fileName string) (*KeepList, error) {
	if fileName == "" {
		fileName = KeepFileName
	}

	path, err := paths.Resolve(root, fileName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &KeepList{}, nil
	}
	return ParseKeepList(path)
}

// Contains reports whether name is kept.
func (k *KeepList) Contains(name string) bool {
	return slices.ContainsFunc(k.Keep, func(e KeepEntry) bool { return e.Name == name })
}

// Reason returns why name is kept, or "".
func (k *KeepList) Reason(name string) string {
	for _, e := range k.Keep {
		if e.Name == name {
			return e.Reason
		}
	}
	return ""
}

// Filter splits names into those that may be removed and those kept.
func (k *KeepList) Filter(names []string) (remove, kept []string) {
	for _, name := range names {
		if k.Contains(name) {
			kept = append(kept, name)
		} else {
			remove = append(remove, name)
		}
	}
	return remove, kept
}
