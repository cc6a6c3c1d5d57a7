package encryption

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by this module matches exactly one of
// these through errors.Is.
var (
	// ErrInvalidArgument reports nil, blank or size-mismatched input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidKey reports a nil key, a key with the wrong algorithm tag or
	// a key whose material has the wrong length.
	ErrInvalidKey = errors.New("invalid key")

	// ErrMalformedPayload reports a combined blob shorter than its declared
	// IV and tag lengths.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrAuthenticationFailure reports a failed AEAD tag check. It signals
	// tampering or a wrong key and is kept distinct from ErrDecryptionFailure.
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrEncryptionFailure wraps any other fault raised while encrypting.
	ErrEncryptionFailure = errors.New("encryption failure")

	// ErrDecryptionFailure wraps any other fault raised while decrypting.
	ErrDecryptionFailure = errors.New("decryption failure")

	// ErrUnknownPlugin is returned by registries for names outside the
	// registered set.
	ErrUnknownPlugin = errors.New("unknown plugin")
)

// Error is the concrete error type returned by engines and plugins.
//
// Unwrap exposes only Kind. The underlying engine fault, if any, is kept for
// diagnostics and reachable through Cause, so errors.As never hands callers a
// standard-library cipher error.
type Error struct {
	Op    string
	Kind  error
	Msg   string
	cause error
}

func (e *Error) Error() string {
	var msg string
	if e.Op != "" {
		msg = e.Op + ": "
	}
	msg += e.Kind.Error()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Cause returns the underlying fault, or nil.
func (e *Error) Cause() error {
	return e.cause
}

// NewError builds an *Error of the given kind with a formatted message.
func NewError(op string, kind error, format string, args ...interface{}) *Error {
	return &Error{
		Op:   op,
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// WrapError builds an *Error of the given kind that retains cause for
// diagnostics.
func WrapError(op string, kind error, cause error, format string, args ...interface{}) *Error {
	e := NewError(op, kind, format, args...)
	e.cause = cause
	return e
}

// IsValidationError reports whether err was raised by input validation rather
// than by the cipher itself.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidKey) ||
		errors.Is(err, ErrMalformedPayload)
}
