// Package syntax parses JavaScript and TypeScript source into tree-sitter
// syntax trees for usage detection.
package syntax

import "strings"

// Language selects the tree-sitter grammar.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
)

// Options controls how a file is parsed.
type Options struct {
	// Markup enables markup (JSX) syntax
	Markup bool
	// TypeScript enables type annotations
	TypeScript bool
}

// Language returns the grammar the options resolve to. The JavaScript
// grammar accepts JSX natively, TypeScript needs the separate TSX grammar.
func (o Options) Language() Language {
	switch {
	case o.TypeScript && o.Markup:
		return LangTSX
	case o.TypeScript:
		return LangTypeScript
	default:
		return LangJavaScript
	}
}

// OptionsFor derives parse options from a file extension and whether the
// file is markup-capable.
func OptionsFor(ext string, markup bool) Options {
	switch strings.ToLower(ext) {
	case ".ts", ".tsx", ".mts", ".cts":
		return Options{TypeScript: true, Markup: markup}
	default:
		return Options{Markup: markup}
	}
}

// LanguageFor picks the grammar for a file extension. Unknown extensions
// fall back to JavaScript and report false.
func LanguageFor(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	default:
		return LangJavaScript, false
	}
}
