package declaration

import (
	"regexp"
	"sort"
	"strings"
)

const (
	quote   = "['\"`]"
	comment = `//[^\n]*\n|/\*[\s\S]*?\*/`
)

var (
	// import <clause> from '<specifier>'; the clause may span lines and hold
	// comments but never crosses a statement boundary because ; ( ) and
	// quotes outside comments are excluded.
	staticImportPattern = regexp.MustCompile(`\bimport\s+((?:[\w$*{}\s,]|` + comment + `)+?)\s*from\s*` + quote + "([^'\"`\\n]+)" + quote)

	// require('<specifier>') with a single literal argument
	requirePattern = regexp.MustCompile(`\brequire\s*\(\s*` + quote + "([^'\"`\\n]+)" + quote + `\s*\)`)

	// import('<specifier>') with a single literal argument
	dynamicImportPattern = regexp.MustCompile(`\bimport\s*\(\s*` + quote + "([^'\"`\\n]+)" + quote + `\s*\)`)

	// const x = require('y'), const { a, b: c } = await import('y'), import x = require('y')
	assignedRequirePattern = regexp.MustCompile(`\b(?:const|let|var|import)\s+([\w$]+|\{[^}]*\})\s*=\s*(?:await\s+)?(?:require|import)\s*\(\s*` + quote + "([^'\"`\\n]+)" + quote + `\s*\)`)

	commentPattern = regexp.MustCompile(comment)
)

// declaration is one regex hit before it is folded into a Binding.
type declaration struct {
	offset    int
	specifier string
	symbols   []string
	kind      DeclarationKind
}

// Extractor finds import-style and require-style declarations in raw text.
type Extractor struct{}

// NewExtractor creates a declaration extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns one Binding per external dependency declared in text, in
// order of first declaration. It never fails: unmatched text yields nothing.
func (e *Extractor) Extract(path string, text []byte) []Binding {
	decls := scanDeclarations(string(text))

	var bindings []Binding
	index := make(map[string]int)

	for _, d := range decls {
		name, ok := PackageName(d.specifier)
		if !ok {
			continue
		}

		i, seen := index[name]
		if !seen {
			i = len(bindings)
			index[name] = i
			bindings = append(bindings, Binding{Dependency: name, Path: path})
		}

		b := &bindings[i]
		b.addKind(d.kind)
		for _, sym := range d.symbols {
			b.addSymbol(sym)
		}
	}

	return bindings
}

func scanDeclarations(src string) []declaration {
	var decls []declaration

	for _, m := range staticImportPattern.FindAllStringSubmatchIndex(src, -1) {
		decls = append(decls, declaration{
			offset:    m[0],
			specifier: src[m[4]:m[5]],
			symbols:   ParseBindingClause(src[m[2]:m[3]]),
			kind:      StaticImport,
		})
	}

	// require does not bind names by itself; the package name stands in as
	// the implicit local symbol.
	for _, m := range requirePattern.FindAllStringSubmatchIndex(src, -1) {
		spec := src[m[2]:m[3]]
		decls = append(decls, declaration{
			offset:    m[0],
			specifier: spec,
			symbols:   []string{implicitSymbol(spec)},
			kind:      DynamicRequire,
		})
	}
	for _, m := range dynamicImportPattern.FindAllStringSubmatchIndex(src, -1) {
		spec := src[m[2]:m[3]]
		decls = append(decls, declaration{
			offset:    m[0],
			specifier: spec,
			symbols:   []string{implicitSymbol(spec)},
			kind:      DynamicRequire,
		})
	}

	// Names assigned from a require are bound in addition to the implicit one.
	for _, m := range assignedRequirePattern.FindAllStringSubmatchIndex(src, -1) {
		decls = append(decls, declaration{
			offset:    m[0],
			specifier: src[m[4]:m[5]],
			symbols:   parsePattern(src[m[2]:m[3]]),
			kind:      DynamicRequire,
		})
	}

	sort.SliceStable(decls, func(i, j int) bool {
		return decls[i].offset < decls[j].offset
	})

	return decls
}

func implicitSymbol(specifier string) string {
	name, ok := PackageName(specifier)
	if !ok {
		return ""
	}
	return name
}

// PackageName normalises a module specifier to the dependency name it
// refers to: "lodash/fp/map" is "lodash", "@babel/core/lib" is "@babel/core".
// Relative and absolute paths and URLs are not dependencies.
func PackageName(specifier string) (string, bool) {
	spec := strings.TrimSpace(specifier)
	if spec == "" || strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") || strings.Contains(spec, "://") {
		return "", false
	}

	parts := strings.SplitN(spec, "/", 3)
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 && parts[1] != "" {
		return parts[0] + "/" + parts[1], true
	}
	return parts[0], true
}

// ParseBindingClause splits an import clause into the local names it binds.
//
//	React                     -> React
//	{ useState, useRef as r } -> useState, r
//	* as utils                -> utils
//	Default, { type Props }   -> Default, Props
func ParseBindingClause(clause string) []string {
	clause = stripComments(clause)
	var names []string
	for _, part := range strings.Split(clause, ",") {
		part = strings.NewReplacer("{", " ", "}", " ").Replace(part)
		if name := localName(strings.Fields(part)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// localName picks the bound name out of one clause element.
func localName(fields []string) string {
	if len(fields) > 1 && fields[0] == "type" {
		fields = fields[1:]
	}
	switch {
	case len(fields) == 0:
		return ""
	case len(fields) >= 3 && fields[len(fields)-2] == "as":
		return fields[len(fields)-1]
	case fields[0] == "*":
		return ""
	default:
		return fields[0]
	}
}

// parsePattern extracts the names bound by `x` or `{ a, b: c, ...rest }`.
func parsePattern(pattern string) []string {
	pattern = strings.TrimSpace(stripComments(pattern))
	if !strings.HasPrefix(pattern, "{") {
		return []string{pattern}
	}

	var names []string
	for _, part := range strings.Split(strings.Trim(pattern, "{}"), ",") {
		part = strings.TrimSpace(part)
		if _, alias, ok := strings.Cut(part, ":"); ok {
			part = alias
		}
		part = strings.TrimPrefix(strings.TrimSpace(part), "...")
		// Drop default values: { a = 1 }
		part, _, _ = strings.Cut(part, "=")
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// stripComments replaces line and block comments with a space.
func stripComments(s string) string {
	return commentPattern.ReplaceAllString(s, " ")
}
