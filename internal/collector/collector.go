// Package collector enumerates the source files an analysis runs over.
package collector

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"deptrim/internal/config"
	"deptrim/internal/errors"
	"deptrim/internal/paths"
)

// FileKind distinguishes plain scripts from files that may contain markup.
type FileKind int

const (
	// KindScript is a plain JavaScript/TypeScript file
	KindScript FileKind = iota
	// KindMarkup is a file whose extension allows JSX/TSX markup
	KindMarkup
)

func (k FileKind) String() string {
	if k == KindMarkup {
		return "markup"
	}
	return "script"
}

// ErrTooLarge is returned by Read for files above the configured size limit.
var ErrTooLarge = stderrors.New("file exceeds size limit")

// SourceFile is one file read from disk. It is not modified after Read.
type SourceFile struct {
	// Path is the absolute path
	Path string
	// RelPath is root-relative with forward slashes
	RelPath string
	Text    []byte
	Kind    FileKind
}

// Ext returns the lower-cased extension of the file.
func (f *SourceFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.Path))
}

// Collector walks a project tree for candidate source files.
type Collector struct {
	extensions map[string]bool
	markup     map[string]bool
	ignoreDirs map[string]bool
	maxSize    uint64
}

// New creates a collector from the scan and usage configuration.
func New(scan config.ScanConfig, usage config.UsageConfig) *Collector {
	c := &Collector{
		extensions: toSet(scan.Extensions),
		markup:     toSet(usage.MarkupExtensions),
		ignoreDirs: make(map[string]bool, len(scan.IgnoreDirs)),
	}
	for _, dir := range scan.IgnoreDirs {
		c.ignoreDirs[dir] = true
	}
	// Validate already rejected malformed sizes; treat them as unlimited here.
	if size, err := scan.MaxFileSizeBytes(); err == nil {
		c.maxSize = size
	}
	return c
}

func toSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(ext)] = true
	}
	return set
}

// Walk returns a lazy depth-first sequence of matching absolute file paths.
// Entries inside a directory are visited in lexical order, so two walks over
// an unchanged tree yield the same sequence. Each range over the result
// starts a fresh walk. A missing or unreadable root yields a single IOError.
func (c *Collector) Walk(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		absRoot, err := checkRoot(root)
		if err != nil {
			yield("", err)
			return
		}

		walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == absRoot {
					return errors.New(errors.IOError, "cannot read project root", err).WithPath(absRoot)
				}
				// Unreadable subdirectories are skipped, not fatal
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != absRoot && c.ignoreDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() || !c.Matches(path) {
				return nil
			}

			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})

		if walkErr != nil {
			yield("", walkErr)
		}
	}
}

// Collect materializes Walk, stopping early when ctx is canceled.
func (c *Collector) Collect(ctx context.Context, root string) ([]string, error) {
	var files []string
	for path, err := range c.Walk(root) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.New(errors.Canceled, "file discovery canceled", err)
		}
		files = append(files, path)
	}
	return files, nil
}

// Matches reports whether path has one of the configured extensions.
func (c *Collector) Matches(path string) bool {
	return c.extensions[strings.ToLower(filepath.Ext(path))]
}

// KindOf infers the file kind from the extension.
func (c *Collector) KindOf(path string) FileKind {
	if c.markup[strings.ToLower(filepath.Ext(path))] {
		return KindMarkup
	}
	return KindScript
}

// Read loads a file found by Walk. Files above the size limit return ErrTooLarge.
func (c *Collector) Read(path, root string) (*SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if c.maxSize > 0 && uint64(info.Size()) > c.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	rel, err := paths.Relative(root, path)
	if err != nil {
		rel = paths.Slash(path)
	}

	return &SourceFile{
		Path:    path,
		RelPath: rel,
		Text:    text,
		Kind:    c.KindOf(path),
	}, nil
}

func checkRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", errors.New(errors.IOError, "cannot resolve project root", err).WithPath(root)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return "", errors.New(errors.IOError, "project root does not exist", err).WithPath(absRoot)
	}
	if !info.IsDir() {
		return "", errors.New(errors.IOError, "project root is not a directory", nil).WithPath(absRoot)
	}

	return absRoot, nil
}
