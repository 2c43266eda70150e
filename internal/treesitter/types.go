package treesitter

// TypeDecl is a type declaration extracted from a C# source file
type TypeDecl struct {
	Name      string
	Namespace string
	Outer     string   // enclosing type names for nested declarations, dot-separated
	Keyword   string   // "class", "struct", "interface", "enum", "record", "record struct"
	Bases     []string // simple names, generic arguments and qualifiers stripped
	Methods   []MethodDecl
	FilePath  string
	StartLine int
	EndLine   int
	Nested    bool // declared inside another type
	Static    bool
	Partial   bool
}

// MethodDecl is a method declared directly in a type body
type MethodDecl struct {
	Name   string
	Static bool
	Line   int
}

// IsClassLike reports whether the declaration is a reference type with a class body
func (t *TypeDecl) IsClassLike() bool {
	return t.Keyword == "class" || t.Keyword == "record"
}

// FullName returns the namespace- and outer-type-qualified name
func (t *TypeDecl) FullName() string {
	return joinNamespace(joinNamespace(t.Namespace, t.Outer), t.Name)
}

// ParseResult contains all type declarations extracted from a file
type ParseResult struct {
	FilePath string
	Types    []TypeDecl
	Error    error
}
