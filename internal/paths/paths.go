// Package paths maps between absolute file locations and the slash-separated,
// root-relative form used in reports and configuration values.
package paths

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned by Resolve for values that climb out of the root.
var ErrOutsideRoot = errors.New("path escapes the project root")

// Relative returns path relative to root, with forward slashes. Symlinks are
// resolved for whichever of the two exists on disk.
func Relative(root, path string) (string, error) {
	rel, err := filepath.Rel(realPath(root), realPath(path))
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Slash rewrites every backslash to a forward slash, also on unix hosts.
func Slash(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
}

// Resolve turns a root-relative configuration value into an absolute path.
// Values that end up outside root, directly or through a symlink, fail with
// ErrOutsideRoot.
func Resolve(root, value string) (string, error) {
	abs := filepath.Join(root, filepath.FromSlash(Slash(value)))
	rel, err := Relative(root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", ErrOutsideRoot
	}
	return abs, nil
}

// realPath resolves symlinks in p, or in its directory when p does not exist.
func realPath(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(p)); err == nil {
		return filepath.Join(dir, filepath.Base(p))
	}
	return filepath.Clean(p)
}
