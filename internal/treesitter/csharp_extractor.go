package treesitter

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// typeKeywords maps declaration node kinds to the keyword recorded on TypeDecl
var typeKeywords = map[string]string{
	"class_declaration":         "class",
	"struct_declaration":        "struct",
	"interface_declaration":     "interface",
	"enum_declaration":          "enum",
	"record_declaration":        "record",
	"record_struct_declaration": "record struct",
}

// extractCSharpTypes walks a C# syntax tree and returns every type
// declaration with its bases and directly declared methods
func extractCSharpTypes(filePath string, root *sitter.Node, code []byte) []TypeDecl {
	var types []TypeDecl

	// owner is the index in types of the enclosing type, or -1
	var walk func(node *sitter.Node, namespace string, owner int)
	walk = func(node *sitter.Node, namespace string, owner int) {
		if node == nil {
			return
		}

		current := namespace
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child == nil {
				continue
			}

			kind := child.Kind()
			switch kind {
			case "namespace_declaration":
				walk(child, joinNamespace(current, namespaceName(child, code)), -1)

			case "file_scoped_namespace_declaration":
				// Applies to its own children and to every following sibling
				current = joinNamespace(current, namespaceName(child, code))
				walk(child, current, -1)

			case "method_declaration":
				if owner >= 0 {
					types[owner].Methods = append(types[owner].Methods, extractMethod(child, code))
				}

			default:
				keyword, isType := typeKeywords[kind]
				if !isType {
					walk(child, current, owner)
					continue
				}

				decl := extractTypeDecl(child, code, filePath, current, keyword)
				if owner >= 0 {
					decl.Nested = true
					decl.Outer = joinNamespace(types[owner].Outer, types[owner].Name)
				}
				idx := len(types)
				types = append(types, decl)
				walk(child, current, idx)
			}
		}
	}

	walk(root, "", -1)
	return types
}

// extractTypeDecl extracts the header of a type declaration
func extractTypeDecl(node *sitter.Node, code []byte, filePath, namespace, keyword string) TypeDecl {
	if keyword == "record" && hasModifier(node, code, "struct") {
		keyword = "record struct"
	}

	return TypeDecl{
		Name:      getNodeText(node.ChildByFieldName("name"), code),
		Namespace: namespace,
		Keyword:   keyword,
		Bases:     baseNames(node, code),
		FilePath:  filePath,
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
		Static:    hasModifier(node, code, "static"),
		Partial:   hasModifier(node, code, "partial"),
	}
}

// extractMethod extracts the name and binding of a method declaration
func extractMethod(node *sitter.Node, code []byte) MethodDecl {
	return MethodDecl{
		Name:   getNodeText(node.ChildByFieldName("name"), code),
		Static: hasModifier(node, code, "static"),
		Line:   int(node.StartPosition().Row) + 1,
	}
}

func namespaceName(node *sitter.Node, code []byte) string {
	return getNodeText(node.ChildByFieldName("name"), code)
}

func joinNamespace(outer, inner string) string {
	switch {
	case outer == "":
		return inner
	case inner == "":
		return outer
	default:
		return outer + "." + inner
	}
}
