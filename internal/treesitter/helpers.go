package treesitter

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// getNodeText extracts text from a node using byte offsets
func getNodeText(node *sitter.Node, code []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if int(end) > len(code) {
		end = uint(len(code))
	}
	if start > end {
		return ""
	}
	return string(code[start:end])
}

// hasModifier reports whether a declaration carries the given modifier keyword
func hasModifier(node *sitter.Node, code []byte, keyword string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "modifier":
			if strings.TrimSpace(getNodeText(child, code)) == keyword {
				return true
			}
		case keyword:
			return true
		}
	}
	return false
}

// simpleTypeName reduces a base type reference to its bare name:
// "UnityEngine.MonoBehaviour" -> "MonoBehaviour",
// "Singleton<GameManager>" -> "Singleton", "Base(x)" -> "Base".
func simpleTypeName(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.IndexAny(ref, "<("); i >= 0 {
		ref = ref[:i]
	}
	if i := strings.LastIndex(ref, "::"); i >= 0 {
		ref = ref[i+2:]
	}
	if i := strings.LastIndex(ref, "."); i >= 0 {
		ref = ref[i+1:]
	}
	return strings.TrimPrefix(strings.TrimSpace(ref), "@")
}

// baseNames returns the simple names listed in a declaration's base list
func baseNames(node *sitter.Node, code []byte) []string {
	var bases []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() != "base_list" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			ref := child.NamedChild(j)
			if ref == nil || ref.Kind() == "comment" {
				continue
			}
			if name := simpleTypeName(getNodeText(ref, code)); name != "" {
				bases = append(bases, name)
			}
		}
	}
	return bases
}
