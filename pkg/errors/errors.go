// Package errors provides coded errors for clustermap.
//
// Every failure that crosses a package boundary carries a [Code]. Codes are
// grouped into a [Family] that the CLI uses to pick an exit message and the
// API server uses to pick a status:
//
//	err := errors.New(errors.ErrCodeInvalidPayload, "duplicate cluster id: %s", id)
//	errors.FamilyOf(err)  // errors.FamilyInvalid
//	errors.HTTPStatus(err) // 400
//
// [Wrap] keeps the cause reachable through the standard unwrapping helpers.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput        Code = "INVALID_INPUT"
	ErrCodeInvalidPayload      Code = "INVALID_PAYLOAD"
	ErrCodeInvalidConversation Code = "INVALID_CONVERSATION"
	ErrCodeInvalidFormat       Code = "INVALID_FORMAT"
	ErrCodeInvalidLevel        Code = "INVALID_LEVEL"
	ErrCodeInvalidPath         Code = "INVALID_PATH"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeClusterNotFound  Code = "CLUSTER_NOT_FOUND"
	ErrCodeSnapshotNotFound Code = "SNAPSHOT_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Family groups related codes.
type Family int

const (
	FamilyInternal Family = iota
	FamilyInvalid
	FamilyNotFound
	FamilyUpstream
	FamilyUnsupported
)

func (f Family) String() string {
	switch f {
	case FamilyInvalid:
		return "invalid"
	case FamilyNotFound:
		return "not found"
	case FamilyUpstream:
		return "upstream"
	case FamilyUnsupported:
		return "unsupported"
	}
	return "internal"
}

type codeInfo struct {
	family Family
	status int
}

var codes = map[Code]codeInfo{
	ErrCodeInvalidInput:        {FamilyInvalid, http.StatusBadRequest},
	ErrCodeInvalidPayload:      {FamilyInvalid, http.StatusBadRequest},
	ErrCodeInvalidConversation: {FamilyInvalid, http.StatusBadRequest},
	ErrCodeInvalidFormat:       {FamilyInvalid, http.StatusBadRequest},
	ErrCodeInvalidLevel:        {FamilyInvalid, http.StatusBadRequest},
	ErrCodeInvalidPath:         {FamilyInvalid, http.StatusBadRequest},

	ErrCodeNotFound:         {FamilyNotFound, http.StatusNotFound},
	ErrCodeClusterNotFound:  {FamilyNotFound, http.StatusNotFound},
	ErrCodeSnapshotNotFound: {FamilyNotFound, http.StatusNotFound},
	ErrCodeFileNotFound:     {FamilyNotFound, http.StatusNotFound},

	ErrCodeNetwork:     {FamilyUpstream, http.StatusBadGateway},
	ErrCodeTimeout:     {FamilyUpstream, http.StatusGatewayTimeout},
	ErrCodeRateLimited: {FamilyUpstream, http.StatusTooManyRequests},

	ErrCodeInternal:    {FamilyInternal, http.StatusInternalServerError},
	ErrCodeUnsupported: {FamilyUnsupported, http.StatusNotImplemented},
}

// Family returns the group c belongs to. Unknown codes are internal.
func (c Code) Family() Family { return codes[c].family }

// Status returns the HTTP status for c, 500 for unknown codes.
func (c Code) Status() int {
	if info, ok := codes[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// find returns the outermost *Error in err's chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := find(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost *Error, or "" if there is none.
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// FamilyOf returns the family of err's code. Uncoded errors are internal.
func FamilyOf(err error) Family { return GetCode(err).Family() }

// HTTPStatus maps err onto a response status. Uncoded context errors become
// 504 (deadline) or 503 (cancelled). Other uncoded errors become 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case GetCode(err) != "":
		return GetCode(err).Status()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// UserMessage returns the message without the code prefix. Uncoded errors
// are returned as-is.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

func IsNotFound(err error) bool { return FamilyOf(err) == FamilyNotFound }
func IsInvalid(err error) bool  { return FamilyOf(err) == FamilyInvalid }

// As is [errors.As], re-exported so callers need only one errors import.
func As(err error, target any) bool { return errors.As(err, target) }

// IsContext reports whether err stems from a cancelled or expired context.
func IsContext(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsCanceled reports whether err stems from a cancelled context.
func IsCanceled(err error) bool { return errors.Is(err, context.Canceled) }
