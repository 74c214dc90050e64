// Package storeerr defines the error kinds surfaced by the record store.
//
// Callers only need to tell two situations apart: the requested timestamp or
// configuration field does not exist (NotFound), or the resource could not be
// read or understood (Parse, IO). Both are reported through *Error so that
// errors.As works across wrapping.
package storeerr

import (
	"errors"
	"fmt"
)

// Code categorizes record store errors.
type Code string

const (
	// CodeNotFound indicates a missing timestamp row, configuration field or document.
	CodeNotFound Code = "NOT_FOUND"

	// CodeParse indicates a malformed document, an unparseable value or a column schema mismatch.
	CodeParse Code = "PARSE"

	// CodeIO indicates the resource could not be read or written.
	CodeIO Code = "IO"
)

// Error is the error returned by every record store operation.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Resource is the file path the operation targeted.
	Resource string

	// Key is the timestamp key or dotted configuration path involved, if any.
	Key string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause (optional).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Key != "" {
		msg = fmt.Sprintf("%s (key=%s)", msg, e.Key)
	}
	if e.Resource != "" {
		msg = fmt.Sprintf("%s in %s", msg, e.Resource)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound creates an Error with CodeNotFound.
func NotFound(resource, key, message string) *Error {
	return &Error{Code: CodeNotFound, Resource: resource, Key: key, Message: message}
}

// Parse creates an Error with CodeParse.
func Parse(resource, key, message string, err error) *Error {
	return &Error{Code: CodeParse, Resource: resource, Key: key, Message: message, Err: err}
}

// IO creates an Error with CodeIO.
func IO(resource, message string, err error) *Error {
	return &Error{Code: CodeIO, Resource: resource, Message: message, Err: err}
}

// IsNotFound returns true if err is a NotFound error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsParse returns true if err is a Parse error.
func IsParse(err error) bool {
	return hasCode(err, CodeParse)
}

// IsIO returns true if err is an IO error.
func IsIO(err error) bool {
	return hasCode(err, CodeIO)
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func hasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
