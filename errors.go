package easel

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

// Error codes.
const (
	// Scene graph
	CodeDuplicateAlias Code = "DUPLICATE_ALIAS"
	CodeNodeNotFound   Code = "NODE_NOT_FOUND"
	CodeParentNotFound Code = "PARENT_NOT_FOUND"
	CodeNotAGroup      Code = "NOT_A_GROUP"

	// Geometry
	CodeDegenerateTransform Code = "DEGENERATE_TRANSFORM"

	// Serialization
	CodeUnknownNodeType Code = "UNKNOWN_NODE_TYPE"

	// Operation log
	CodeUnknownOperation Code = "UNKNOWN_OPERATION"
	CodeNothingToUndo    Code = "NOTHING_TO_UNDO"
	CodeNothingToRedo    Code = "NOTHING_TO_REDO"

	// Configuration
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// Error is a structured error carrying a code and the alias it concerns.
type Error struct {
	Code    Code   // machine-readable code
	Alias   string // node alias involved, if any
	Message string // human-readable message
	Cause   error  // underlying error, if any
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Alias != "" {
		msg = fmt.Sprintf("%s: %s (alias %q)", e.Code, e.Message, e.Alias)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

func newError(code Code, alias, format string, args ...any) *Error {
	return &Error{Code: code, Alias: alias, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsCode reports whether any *Error in err's tree has the given code. Unlike
// CodeOf it looks past an outer *Error with a different code.
func IsCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, c := range u.Unwrap() {
				if IsCode(c, code) {
					return true
				}
			}
			return false
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		default:
			return false
		}
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// AliasOf returns the alias recorded on the first *Error in err's chain.
func AliasOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Alias
	}
	return ""
}
