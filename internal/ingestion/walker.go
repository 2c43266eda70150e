package ingestion

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rohankatakam/scriptusage/internal/errors"
)

// WalkSourceFiles walks root and returns every file with the given
// extension, in lexical order. Generated and editor-private directories
// are skipped.
func WalkSourceFiles(root, ext string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if isSourceFile(path, ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.FileSystemErrorf(err, "failed to walk %s", root)
	}

	return files, nil
}

// WalkCorpus walks every existing directory in roots and returns the
// de-duplicated, sorted union of their source files. Missing roots are
// returned separately so the caller can warn about them.
func WalkCorpus(roots []string, ext string) (files []string, missing []string, err error) {
	seen := make(map[string]bool)

	for _, root := range roots {
		if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
			missing = append(missing, root)
			continue
		}

		found, err := WalkSourceFiles(root, ext)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range found {
			key := filepath.Clean(f)
			if !seen[key] {
				seen[key] = true
				files = append(files, key)
			}
		}
	}

	sort.Strings(files)
	return files, missing, nil
}

// shouldSkipDir returns true if directory should be excluded from scanning
func shouldSkipDir(name string) bool {
	excludeDirs := []string{
		".git",
		".vs",
		".vscode",
		".idea",
		"Library",
		"Temp",
		"Obj",
		"obj",
		"Logs",
		"UserSettings",
		"node_modules",
	}

	for _, exclude := range excludeDirs {
		if name == exclude {
			return true
		}
	}

	// Folders ending in '~' are ignored by the editor's asset importer
	return strings.HasSuffix(name, "~")
}

// isSourceFile returns true if path carries the recognized extension.
// The comparison is case-sensitive.
func isSourceFile(path, ext string) bool {
	return ext != "" && strings.HasSuffix(path, ext)
}
