package treesitter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
)

// LanguageParser wraps a tree-sitter parser loaded with the C# grammar.
// IMPORTANT: Always call Close() to prevent memory leaks (CGO requirement)
type LanguageParser struct {
	parser   *sitter.Parser
	language *sitter.Language
}

// NewLanguageParser creates a C# parser
func NewLanguageParser() (*LanguageParser, error) {
	parser := sitter.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("failed to create tree-sitter parser")
	}

	language := sitter.NewLanguage(tree_sitter_c_sharp.Language())
	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set language c_sharp: %w", err)
	}

	return &LanguageParser{
		parser:   parser,
		language: language,
	}, nil
}

// Close releases parser resources (REQUIRED - CGO memory management)
func (lp *LanguageParser) Close() {
	if lp.parser != nil {
		lp.parser.Close()
	}
}

// Parse parses source code and returns the syntax tree.
// Caller must call tree.Close() when done
func (lp *LanguageParser) Parse(code []byte) (*sitter.Tree, error) {
	tree := lp.parser.Parse(code, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse code")
	}
	return tree, nil
}

// ParseSource extracts type declarations from code using this parser
func (lp *LanguageParser) ParseSource(filePath string, code []byte) *ParseResult {
	tree, err := lp.Parse(code)
	if err != nil {
		return &ParseResult{
			FilePath: filePath,
			Error:    fmt.Errorf("failed to parse: %w", err),
		}
	}
	defer tree.Close()

	return &ParseResult{
		FilePath: filePath,
		Types:    extractCSharpTypes(filePath, tree.RootNode(), code),
	}
}
