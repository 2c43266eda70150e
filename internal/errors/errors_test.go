package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := FileSystemErrorf(os.ErrNotExist, "failed to read %s", "Player.cs")

	assert.Equal(t, "failed to read Player.cs: file does not exist", err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)

	plain := ConfigError("target_dir is required")
	assert.Equal(t, "target_dir is required", plain.Error())
}

func TestSeverityHelpers(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		fatal       bool
		recoverable bool
		errType     ErrorType
	}{
		{"config", ConfigError("bad mode"), true, false, ErrorTypeConfig},
		{"recoverable file", RecoverableFileError(os.ErrPermission, "A.cs"), false, true, ErrorTypeFileSystem},
		{"parse", ParseErrorf(fmt.Errorf("syntax"), "could not parse %s", "B.cs"), false, true, ErrorTypeParse},
		{"storage", StorageError(fmt.Errorf("locked"), "save run"), false, false, ErrorTypeStorage},
		{"scene", SceneError(os.ErrNotExist, "read scene"), true, false, ErrorTypeScene},
		{"plain error", fmt.Errorf("boom"), true, false, ErrorTypeInternal},
		{"wrapped", fmt.Errorf("run: %w", ValidationErrorf("bad flag")), true, false, ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
			assert.Equal(t, tt.recoverable, IsRecoverable(tt.err))
			assert.Equal(t, tt.errType, GetType(tt.err))
		})
	}

	assert.False(t, IsFatal(nil))
	assert.Equal(t, SeverityLow, GetSeverity(nil))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", FileSystemErrorf(os.ErrClosed, "close %s", "Player.cs"))

	assert.True(t, stderrors.Is(err, &Error{Type: ErrorTypeFileSystem}))
	assert.False(t, stderrors.Is(err, &Error{Type: ErrorTypeConfig}))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, SeverityHigh, "nothing"))
}

func TestDetailedString(t *testing.T) {
	err := RecoverableFileError(os.ErrPermission, "Assets/A.cs").WithContext("attempt", 1)

	detail := Detail(err)
	assert.Contains(t, detail, "[LOW] [FILESYSTEM] skipped Assets/A.cs")
	assert.Contains(t, detail, "Caused by: permission denied")
	assert.Contains(t, detail, "  attempt: 1\n  path: Assets/A.cs\n")

	assert.Equal(t, "boom", Detail(fmt.Errorf("boom")))
}

func TestTypeAndSeverityNames(t *testing.T) {
	err := StorageError(fmt.Errorf("locked"), "save run")

	assert.Equal(t, "STORAGE", GetType(err).String())
	assert.Equal(t, "HIGH", GetSeverity(err).String())
	assert.Equal(t, "INTERNAL", GetType(fmt.Errorf("boom")).String())
	assert.Equal(t, "CRITICAL", GetSeverity(fmt.Errorf("boom")).String())
}
