package usage

import (
	"path/filepath"
	"strings"

	"github.com/rohankatakam/scriptusage/internal/models"
)

// ReferencePatterns returns the substrings that count as a mention of
// name. Matching is a plain case-sensitive substring test with no word
// boundaries, so "Foo" also matches "FooBar " and "MyFoo.", while a
// mention such as "(Foo)" is missed.
func ReferencePatterns(name string) []string {
	return []string{
		name + ".",
		"new " + name + "(",
		name + " ",
	}
}

// LineMentions reports whether line contains any of the patterns
func LineMentions(line string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(line, p) {
			return true
		}
	}
	return false
}

// FindReferences scans every corpus file except the entity's own file and
// returns one hit per matching line
func FindReferences(entity models.ScriptEntity, corpus []models.SourceFile) []models.ReferenceHit {
	patterns := ReferencePatterns(entity.Name)
	ownPath := absPath(entity.Path)

	var hits []models.ReferenceHit
	for _, file := range corpus {
		if absPath(file.Path) == ownPath {
			continue
		}

		for i, line := range file.Lines {
			if !LineMentions(line, patterns) {
				continue
			}
			hits = append(hits, models.ReferenceHit{
				File: filepath.Base(file.Path),
				Line: i + 1,
				Text: EscapeQuotes(strings.TrimSpace(line)),
			})
		}
	}
	return hits
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// EscapeQuotes doubles every double quote so the text can sit inside a
// quoted report field
func EscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}
