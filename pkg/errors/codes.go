package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique identifier for specific error conditions in hestia.
type ErrorCode int

const (
	ErrCodeUnknown       ErrorCode = 1000
	ErrCodeConfigInvalid ErrorCode = 1001

	// Discovery
	ErrCodePluginPathMissing ErrorCode = 2001
	ErrCodeDiscoveryFailed   ErrorCode = 2002

	// Registry
	ErrCodeNoExports        ErrorCode = 3001
	ErrCodeConstructFailed  ErrorCode = 3002
	ErrCodeValidationFailed ErrorCode = 3003
	ErrCodeSourceLoadFailed ErrorCode = 3004

	// Phase execution
	ErrCodeStepFailed    ErrorCode = 4001
	ErrCodePIDFileFailed ErrorCode = 4002
)

// HestiaError is a custom error type that provides structured error information,
// including an error code, the operation being performed, and the underlying cause.
type HestiaError struct {
	// Code is the specific error code.
	Code ErrorCode
	// Msg is a human-readable description of the error.
	Msg string
	// Operation describes the action being performed when the error occurred.
	Operation string
	// Err is the underlying error that caused this error, if any.
	Err error
}

// Error returns a formatted string representation of the error.
func (e *HestiaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %s (cause: %v)", e.Code, e.Operation, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Operation, e.Msg)
}

// Unwrap returns the underlying error.
func (e *HestiaError) Unwrap() error {
	return e.Err
}

// New creates a new HestiaError with the specified code, operation, message, and underlying error.
func New(code ErrorCode, op, msg string, err error) error {
	return &HestiaError{
		Code:      code,
		Msg:       msg,
		Operation: op,
		Err:       err,
	}
}

// CodeOf returns the code of the first HestiaError in err's chain, or ErrCodeUnknown.
func CodeOf(err error) ErrorCode {
	var he *HestiaError
	if errors.As(err, &he) {
		return he.Code
	}
	return ErrCodeUnknown
}

// Detail renders the full diagnostic for err: one line per link of the wrap chain,
// outermost first, each with its concrete type.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	depth := 0
	for e := err; e != nil; e = errors.Unwrap(e) {
		if depth > 0 {
			b.WriteString("\n")
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString("caused by: ")
		}
		fmt.Fprintf(&b, "%T: %s", e, e.Error())
		depth++
	}
	return b.String()
}

// Personal.AI order the ending
