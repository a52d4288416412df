package common

import (
	"errors"
	"fmt"
)

var (
	// input and lookup errors
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDataIntegrity marks stored data that references something which no longer resolves.
	ErrDataIntegrity = errors.New("data integrity violation")

	ErrNotConfigured = errors.New("not configured")
)

// Error pairs an error class with a message that is safe to show to users.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Kind == nil {
		return e.Message
	}
	return e.Message + ": " + e.Kind.Error()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// UserMessage returns the message of the first *Error in err's chain.
func UserMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
