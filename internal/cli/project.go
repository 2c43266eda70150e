package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// projectMarkers are the directories every editor project root contains
var projectMarkers = []string{"Assets", "ProjectSettings"}

// DetectProjectRoot walks up from start to the first directory that
// contains all project markers
func DetectProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	for {
		if IsProjectRoot(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no project root (a directory with %v) above %s", projectMarkers, start)
		}
		dir = parent
	}
}

// IsProjectRoot reports whether dir contains every project marker
func IsProjectRoot(dir string) bool {
	for _, marker := range projectMarkers {
		info, err := os.Stat(filepath.Join(dir, marker))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}
