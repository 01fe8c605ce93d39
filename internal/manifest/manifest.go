// Package manifest reads and edits package.json and drives the package
// manager that uninstalls dependencies.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"deptrim/internal/errors"
)

// FileName is the manifest file name
const FileName = "package.json"

// Dependency sections that are subject to classification and removal
const (
	SectionDependencies    = "dependencies"
	SectionDevDependencies = "devDependencies"
)

// Entry is one declared dependency.
type Entry struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// member is one key of a JSON object with its undecoded value.
type member struct {
	key   string
	value json.RawMessage
}

// Manifest is a parsed package.json that remembers key order, so edits
// only touch the entries they remove.
type Manifest struct {
	// Path is where the manifest was loaded from
	Path string

	Name            string
	Dependencies    []Entry
	DevDependencies []Entry

	members []member
	indent  string
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ManifestError, "cannot read manifest", err).WithPath(path)
	}

	m, err := Parse(data)
	if err != nil {
		if coded, ok := err.(*errors.Error); ok {
			return nil, coded.WithPath(path)
		}
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Parse parses manifest content.
func Parse(data []byte) (*Manifest, error) {
	members, err := decodeObject(data)
	if err != nil {
		return nil, errors.New(errors.ManifestError, "malformed package.json", err)
	}

	m := &Manifest{members: members, indent: detectIndent(data)}
	for _, mem := range members {
		switch mem.key {
		case "name":
			_ = json.Unmarshal(mem.value, &m.Name)
		case SectionDependencies:
			if m.Dependencies, err = decodeEntries(mem.value); err != nil {
				return nil, errors.New(errors.ManifestError, "malformed dependencies", err)
			}
		case SectionDevDependencies:
			if m.DevDependencies, err = decodeEntries(mem.value); err != nil {
				return nil, errors.New(errors.ManifestError, "malformed devDependencies", err)
			}
		}
	}
	return m, nil
}

// Declared returns every declared name, direct dependencies first, without
// duplicates.
func (m *Manifest) Declared() []string {
	names := make([]string, 0, len(m.Dependencies)+len(m.DevDependencies))
	for _, e := range slices.Concat(m.Dependencies, m.DevDependencies) {
		if !slices.Contains(names, e.Name) {
			names = append(names, e.Name)
		}
	}
	return names
}

// Has reports whether name is declared in either section.
func (m *Manifest) Has(name string) bool {
	return slices.Contains(m.Declared(), name)
}

// Without renders the manifest with names removed from dependencies and
// devDependencies. Every other key, and the order of all keys, is kept.
func (m *Manifest) Without(names []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")

	for i, mem := range m.members {
		value := mem.value
		if mem.key == SectionDependencies || mem.key == SectionDevDependencies {
			pruned, err := pruneObject(value, names)
			if err != nil {
				return nil, errors.New(errors.ManifestError, "cannot edit "+mem.key, err)
			}
			value = pruned
		}

		if i > 0 {
			buf.WriteString(",")
		}
		key, _ := json.Marshal(mem.key)
		buf.WriteString("\n" + m.indent)
		buf.Write(key)
		buf.WriteString(": ")
		if err := json.Indent(&buf, value, m.indent, m.indent); err != nil {
			return nil, errors.New(errors.ManifestError, "cannot format "+mem.key, err)
		}
	}

	if len(m.members) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// Save writes the manifest without names back to its Path.
func (m *Manifest) Save(names []string) error {
	data, err := m.Without(names)
	if err != nil {
		return err
	}

	info, err := os.Stat(m.Path)
	if err != nil {
		return errors.New(errors.ManifestError, "cannot stat manifest", err).WithPath(m.Path)
	}
	if err := os.WriteFile(m.Path, data, info.Mode().Perm()); err != nil {
		return errors.New(errors.ManifestError, "cannot write manifest", err).WithPath(m.Path)
	}
	return nil
}

// detectIndent returns the whitespace that starts the first member line,
// or two spaces for single-line manifests.
func detectIndent(data []byte) string {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return "  "
	}
	line := data[i+1:]
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	if n == 0 {
		return "  "
	}
	return string(line[:n])
}

// decodeObject splits a JSON object into its members, in source order.
func decodeObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		members = append(members, member{key: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected content after the top-level object")
	}
	return members, nil
}

func decodeEntries(raw json.RawMessage) ([]Entry, error) {
	members, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(members))
	for _, mem := range members {
		var version string
		if err := json.Unmarshal(mem.value, &version); err != nil {
			version = string(mem.value)
		}
		entries = append(entries, Entry{Name: mem.key, Version: version})
	}
	return entries, nil
}

// pruneObject re-encodes a JSON object without the given keys.
func pruneObject(raw json.RawMessage, names []string) (json.RawMessage, error) {
	members, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	n := 0
	for _, mem := range members {
		if slices.Contains(names, mem.key) {
			continue
		}
		if n > 0 {
			buf.WriteString(",")
		}
		key, _ := json.Marshal(mem.key)
		buf.Write(key)
		buf.WriteString(":")
		buf.Write(mem.value)
		n++
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}
