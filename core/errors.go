package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is matched by every rejection of the
	// authentication gate.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrMissingToken = fmt.Errorf("%w: no token provided", ErrUnauthenticated)
	ErrTokenRevoked = fmt.Errorf("%w: token is no longer valid", ErrUnauthenticated)
	ErrBadToken     = fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)

	// ErrInvalidToken is the single verdict of the token verifier whatever
	// went wrong with the token.
	ErrInvalidToken = errors.New("invalid token")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("not authorized to access this route")

	ErrUserNotFound = errors.New("user not found")
	ErrTaskNotFound = errors.New("task not found")
	ErrEmailTaken   = errors.New("user already exists with this email")

	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidInput    = errors.New("invalid input")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of a request. It matches
// ErrInvalidInput.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	msg := ErrInvalidInput.Error() + ": "
	for i, f := range e.Fields {
		if i > 0 {
			msg += "; "
		}
		msg += f.Field + ": " + f.Message
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
