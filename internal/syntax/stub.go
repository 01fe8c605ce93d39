//go:build !cgo

package syntax

import (
	"context"

	"deptrim/internal/errors"
)

// ErrUnavailable is returned by Parse when tree-sitter is not compiled in.
var ErrUnavailable = errors.New(errors.ParseError, "syntax trees require CGO (tree-sitter)", nil)

// Tree is a parsed file. This stub is never populated.
type Tree struct{}

// Source returns nil.
func (t *Tree) Source() []byte { return nil }

// Language returns the zero language.
func (t *Tree) Language() Language { return "" }

// Close is a no-op.
func (t *Tree) Close() {}

// Provider parses source text.
// This is a stub implementation when CGO is not available.
type Provider struct{}

// NewProvider creates a syntax tree provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Parse always fails without CGO; files then contribute declarations only.
func (p *Provider) Parse(ctx context.Context, source []byte, opts Options) (*Tree, error) {
	return nil, ErrUnavailable
}

// IsAvailable returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}
