package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/scriptusage/internal/errors"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"empty", "", []string{}},
		{"single line", "a", []string{"a"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"bare cr", "a\rb", []string{"a", "b"}},
		{"blank lines kept", "a\n\nb", []string{"a", "", "b"}},
		{"bom", "\xEF\xBB\xBFusing System;\n", []string{"using System;"}},
		{"only newline", "\n", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines([]byte(tt.data)))
		})
	}
}

func TestParseReadErrorPolicy(t *testing.T) {
	p, err := ParseReadErrorPolicy("")
	require.NoError(t, err)
	assert.Equal(t, SkipUnreadable, p)

	p, err = ParseReadErrorPolicy("fail")
	require.NoError(t, err)
	assert.Equal(t, FailOnUnreadable, p)

	_, err = ParseReadErrorPolicy("retry")
	assert.Error(t, err)
}

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "A.cs")
	b := filepath.Join(dir, "B.cs")
	missing := filepath.Join(dir, "Gone.cs")
	require.NoError(t, os.WriteFile(a, []byte("class A {}\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("class B {}\r\n// B\r\n"), 0644))

	t.Run("skip keeps going", func(t *testing.T) {
		logger, hook := test.NewNullLogger()

		res, err := LoadCorpus(context.Background(), []string{a, missing, b}, SkipUnreadable, 4, logger)
		require.NoError(t, err)

		require.Len(t, res.Files, 2)
		assert.Equal(t, a, res.Files[0].Path)
		assert.Equal(t, []string{"class B {}", "// B"}, res.Files[1].Lines)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "Gone.cs")
		assert.NotNil(t, hook.LastEntry())
	})

	t.Run("fail aborts", func(t *testing.T) {
		logger, _ := test.NewNullLogger()

		_, err := LoadCorpus(context.Background(), []string{a, missing}, FailOnUnreadable, 2, logger)
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeFileSystem, errors.GetType(err))
		assert.True(t, errors.IsFatal(err))
	})
}

func TestReadError(t *testing.T) {
	skipped := readError(os.ErrPermission, "Assets/A.cs", SkipUnreadable)
	assert.True(t, errors.IsRecoverable(skipped))
	assert.Equal(t, "skipped Assets/A.cs: permission denied", skipped.Error())

	failed := readError(os.ErrPermission, "Assets/A.cs", FailOnUnreadable)
	assert.False(t, errors.IsRecoverable(failed))
	assert.True(t, errors.IsFatal(failed))
}
