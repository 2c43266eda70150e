package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Assets", "Scripts", "AI"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ProjectSettings"), 0755))

	got, err := DetectProjectRoot(filepath.Join(root, "Assets", "Scripts", "AI"))
	require.NoError(t, err)
	assert.Equal(t, root, got)

	got, err = DetectProjectRoot(root)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestDetectProjectRoot_NotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Assets"), 0755))

	_, err := DetectProjectRoot(dir)
	assert.Error(t, err)
}
