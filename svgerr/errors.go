// Package svgerr defines the tagged errors returned by the conversion
// pipeline.
//
// Every failure is tagged where it is detected, with one of a small set
// of codes:
//   - PARSE_ERROR: the SVG text is malformed or uses an unsupported construct
//   - ALLOCATION_ERROR: the raster buffer cannot be allocated
//   - INVALID_ARGUMENT: a caller supplied value violates a precondition
//   - ENCODING_ERROR: the PNG encoder rejected the buffer
//   - RENDER_ERROR: the rasterizer failed unexpectedly
//
// # Usage
//
//	err := svgerr.New(svgerr.CodeInvalidArgument, "scale must be positive, got %g", s)
//	if svgerr.Is(err, svgerr.CodeInvalidArgument) {
//	    // reject the request
//	}
package svgerr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeParse           Code = "PARSE_ERROR"
	CodeAllocation      Code = "ALLOCATION_ERROR"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeEncoding        Code = "ENCODING_ERROR"
	CodeRender          Code = "RENDER_ERROR"
)

// Error is a tagged error with an optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err carries the given code.
// Only the outermost *Error of the chain is considered, so that a
// wrapping error decides the category.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns an empty string if err is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of err, without the code prefix.
// The cause, when present, is appended.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}
