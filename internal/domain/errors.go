package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the upload and OCR layers.
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindNotFound        ErrorKind = "not_found"
	KindMissingTool     ErrorKind = "missing_tool"
	KindInvalidDocument ErrorKind = "invalid_document"
	KindUnsupportedType ErrorKind = "unsupported_type"
	KindProcessing      ErrorKind = "processing"
	KindUnexpected      ErrorKind = "unexpected"
)

// Error carries a client-safe Message and the underlying cause.
// Only Message is meant to leave the process.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func ValidationError(message string, err error) *Error {
	return NewError(KindValidation, message, err)
}

func NotFoundError(message string, err error) *Error {
	return NewError(KindNotFound, message, err)
}

func MissingToolError(message string, err error) *Error {
	return NewError(KindMissingTool, message, err)
}

func InvalidDocumentError(message string, err error) *Error {
	return NewError(KindInvalidDocument, message, err)
}

func UnsupportedTypeError(message string, err error) *Error {
	return NewError(KindUnsupportedType, message, err)
}

func ProcessingError(message string, err error) *Error {
	return NewError(KindProcessing, message, err)
}

func UnexpectedError(message string, err error) *Error {
	return NewError(KindUnexpected, message, err)
}

// KindOf reports the kind of the first *Error in err's chain,
// or KindUnexpected when there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// MessageOf returns the client-safe message for err. Errors outside the
// domain taxonomy collapse to fallback so internals never leak.
func MessageOf(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}
