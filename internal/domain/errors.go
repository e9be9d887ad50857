package domain

import (
	"errors"
	"strings"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDeactivated    = errors.New("user account is deactivated")
)

// Token errors
var (
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrWrongTokenType      = errors.New("wrong token type")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
)

// Todo errors
var (
	ErrTodoNotFound = errors.New("todo not found")
	ErrNotOwner     = errors.New("resource does not belong to the authenticated user")
)

// ValidationErrors collects field-level validation messages for a single
// request so the response can report all of them at once.
type ValidationErrors struct {
	Messages []string
}

func (e *ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationErrors) Add(msg string) {
	e.Messages = append(e.Messages, msg)
}

func (e *ValidationErrors) Any() bool {
	return len(e.Messages) > 0
}
