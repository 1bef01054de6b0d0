package errx

import (
	"errors"
	"fmt"
)

// Kind classifies a failure into one of the fixed categories the service
// knows how to present to the end user.
type Kind string

const (
	KindQuotaExceeded     Kind = "quota_exceeded"
	KindInvalidCredential Kind = "invalid_credential"
	KindBadRequest        Kind = "bad_request"
	KindGenericFailure    Kind = "generic_failure"
	KindStorageFull       Kind = "storage_full"
	KindTimeout           Kind = "timeout"
)

// Fixed user-safe message per kind. Raw backend detail is logged, never
// shown verbatim, except embedded descriptively in the generic case.
const (
	QuotaExceededMessage     = "Sorry, the API quota has been exceeded. Please check your account and billing."
	InvalidCredentialMessage = "Sorry, there seems to be an issue with the API key. Please check your configuration."
	BadRequestMessage        = "Sorry, there was an issue with the image format or request. Please try with a different image."
	TimeoutMessage           = "Sorry, the request took too long to complete. Please try again."
	StorageFullMessage       = "conversation storage is full"
	// FallbackMessage is the last-resort reply when a failure reaches the
	// transport boundary unclassified.
	FallbackMessage = "Sorry, I encountered an error while processing your request. Please try again."
)

// Error wraps an underlying error with a classification kind and a fixed
// user-safe message.
type Error struct {
	Err     error
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return false
}

// New creates a classified error carrying the fixed user-safe message for
// the given kind.
func New(err error, kind Kind) *Error {
	return &Error{
		Err:     err,
		Kind:    kind,
		Message: messageFor(kind, err),
	}
}

func messageFor(kind Kind, err error) string {
	switch kind {
	case KindQuotaExceeded:
		return QuotaExceededMessage
	case KindInvalidCredential:
		return InvalidCredentialMessage
	case KindBadRequest:
		return BadRequestMessage
	case KindTimeout:
		return TimeoutMessage
	case KindStorageFull:
		return StorageFullMessage
	default:
		if err != nil {
			return fmt.Sprintf("Sorry, I encountered an error: %v. Please try again.", err)
		}
		return FallbackMessage
	}
}

// KindOf returns the classification of err, or KindGenericFailure when the
// error carries no classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGenericFailure
}

// UserMessage returns the user-safe chat string for err. It never returns
// an empty string.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return FallbackMessage
}
