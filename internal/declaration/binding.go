// Package declaration finds the external packages a source file declares,
// by text matching only, so it keeps working on files that fail to parse.
package declaration

import "slices"

// DeclarationKind is the syntax a dependency was declared with
type DeclarationKind string

const (
	// StaticImport is `import <clause> from '<specifier>'`
	StaticImport DeclarationKind = "import"
	// DynamicRequire is `require('<specifier>')` or `import('<specifier>')`
	DynamicRequire DeclarationKind = "require"
)

// Binding associates one dependency with the local symbols a file binds it to.
// Identity is (Dependency, Path); repeated declarations in a file are unioned.
type Binding struct {
	// Dependency is the package name (first segment, or @scope/name)
	Dependency string `json:"dependency"`

	// Symbols are the local names bound, in first-seen order
	Symbols []string `json:"symbols"`

	// Path is the file the declaration was found in
	Path string `json:"path"`

	// Kinds lists each declaration syntax seen, in first-seen order
	Kinds []DeclarationKind `json:"kinds"`
}

// HasSymbol reports whether name is one of the binding's local symbols.
func (b *Binding) HasSymbol(name string) bool {
	return slices.Contains(b.Symbols, name)
}

// HasKind reports whether the dependency was declared with the given syntax.
func (b *Binding) HasKind(kind DeclarationKind) bool {
	return slices.Contains(b.Kinds, kind)
}

func (b *Binding) addSymbol(name string) {
	if name != "" && !b.HasSymbol(name) {
		b.Symbols = append(b.Symbols, name)
	}
}

func (b *Binding) addKind(kind DeclarationKind) {
	if !b.HasKind(kind) {
		b.Kinds = append(b.Kinds, kind)
	}
}
