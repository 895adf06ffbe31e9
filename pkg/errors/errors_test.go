package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      New(CodeParseError, "bad header line"),
			expected: "PARSE_ERROR: bad header line",
		},
		{
			name:     "with cause",
			err:      Wrap(CodeIOError, "open input", errors.New("permission denied")),
			expected: "IO_ERROR: open input: permission denied",
		},
		{
			name:     "formatted message",
			err:      Newf(CodeParseError, "malformed edge at line %d", 42),
			expected: "PARSE_ERROR: malformed edge at line 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeDatabaseError, "save run", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestHasCode_WalksChain(t *testing.T) {
	inner := Newf(CodeIOError, "read block %d", 7)
	outer := Wrap(CodeConfigError, "load config", inner)
	plain := fmt.Errorf("context: %w", outer)

	assert.True(t, HasCode(plain, CodeConfigError))
	assert.True(t, HasCode(plain, CodeIOError), "codes deeper in the chain still match")
	assert.False(t, HasCode(plain, CodeParseError))
	assert.False(t, HasCode(nil, CodeIOError))
	assert.False(t, HasCode(errors.New("uncoded"), CodeIOError))
}

func TestPredicates(t *testing.T) {
	err := Newf(CodeParseError, "malformed edge at line %d", 7)

	assert.True(t, IsParseError(err))
	assert.False(t, IsInvalidInput(err))
	assert.False(t, IsIOError(err))
	assert.False(t, IsDatabaseError(err))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, CodeIOError, GetErrorCode(Wrap(CodeIOError, "read", errors.New("eof"))))
	assert.Equal(t, CodeUnknown, GetErrorCode(errors.New("plain error")))

	// The outermost code wins when several are stacked.
	wrapped := Wrap(CodeConfigError, "load config", New(CodeIOError, "missing file"))
	assert.Equal(t, CodeConfigError, GetErrorCode(wrapped))
}
