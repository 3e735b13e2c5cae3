package doc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failure. Handlers at the transport boundary map
// kinds to status codes; the kind and its identifying detail survive every
// layer unchanged.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrNotFound
	ErrUnreadable
	ErrUnknownSlideType
	ErrMalformedMetadata
	ErrValidation
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNotFound:
		return "not_found"
	case ErrUnreadable:
		return "unreadable"
	case ErrUnknownSlideType:
		return "unknown_slide_type"
	case ErrMalformedMetadata:
		return "malformed_metadata"
	case ErrValidation:
		return "validation_failure"
	}
	return "error"
}

// Error is the single error type produced by the engines, the resolver and
// the orchestrator.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err, or ErrUnknown when err does
// not carry one.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrUnknown
}

func IsNotFound(err error) bool { return KindOf(err) == ErrNotFound }

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Unreadablef(err error, format string, args ...any) *Error {
	return &Error{Kind: ErrUnreadable, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func MalformedMetadataf(err error, format string, args ...any) *Error {
	return &Error{Kind: ErrMalformedMetadata, Msg: fmt.Sprintf(format, args...), Err: err}
}

// UnknownSlideType builds the request-level failure for a slide_type that is
// absent from a template's catalog. The message always names the bad type
// and the full set of valid types; suggestion, when non-empty, is the
// closest catalog match.
func UnknownSlideType(requested string, valid []string, suggestion string) *Error {
	msg := fmt.Sprintf("slide_type %q not found in template; valid types: %s",
		requested, strings.Join(valid, ", "))
	if suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
	}
	return &Error{Kind: ErrUnknownSlideType, Msg: msg}
}
