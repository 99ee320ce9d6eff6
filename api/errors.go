// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for memlab.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrPoolClosed           = errors.New("pool is closed")
	ErrStaleHandle          = errors.New("stale handle")
	ErrUnknownScenario      = errors.New("unknown scenario")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidConfiguration
	ErrCodeInvalidArgument
	ErrCodeClosed
	ErrCodeStale
	ErrCodeNotFound
	ErrCodeInternal
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeInvalidConfiguration: ErrInvalidConfiguration,
	ErrCodeInvalidArgument:      ErrInvalidArgument,
	ErrCodeClosed:               ErrPoolClosed,
	ErrCodeStale:                ErrStaleHandle,
	ErrCodeNotFound:             ErrUnknownScenario,
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the sentinel matching the code, so errors.Is works
// against the package-level variables.
func (e *Error) Unwrap() error {
	return codeSentinels[e.Code]
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf extracts the ErrorCode from err, or ErrCodeInternal when err
// carries none. A nil error yields ErrCodeOK.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
