// Package errors defines the coded error type the CLI reports failures with.
//
// Every failure surfaced to the user carries a Code classifying it (bad
// input, i/o, database, ...). Codes travel with the error through wrapping,
// so callers test HasCode instead of matching message text.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an error.
type Code string

// The error codes of the application.
const (
	CodeUnknown       Code = "UNKNOWN_ERROR"
	CodeParseError    Code = "PARSE_ERROR"
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeIOError       Code = "IO_ERROR"
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeDatabaseError Code = "DATABASE_ERROR"
	CodeDownloadError Code = "DOWNLOAD_ERROR"
	CodeNotFound      Code = "NOT_FOUND"
)

// AppError pairs a classification code with context and an optional cause.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

// Error renders "CODE: message: cause".
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the cause, if any.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an AppError recording err as the cause.
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		if app, ok := err.(*AppError); ok && app.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetErrorCode returns the code of the outermost AppError in the chain,
// or CodeUnknown for plain errors.
func GetErrorCode(err error) Code {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code
	}
	return CodeUnknown
}

// IsParseError reports whether the error chain carries a parse error.
func IsParseError(err error) bool {
	return HasCode(err, CodeParseError)
}

// IsInvalidInput reports whether the error chain carries an invalid input error.
func IsInvalidInput(err error) bool {
	return HasCode(err, CodeInvalidInput)
}

// IsIOError reports whether the error chain carries an i/o error.
func IsIOError(err error) bool {
	return HasCode(err, CodeIOError)
}

// IsDatabaseError reports whether the error chain carries a database error.
func IsDatabaseError(err error) bool {
	return HasCode(err, CodeDatabaseError)
}
