package domain

import (
	"errors"
	"strings"
)

// Kind classifies an Error so the transport layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
)

// Error is the single structured error type returned by the core.
// Errors carries per-field details for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Errors  []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and message, so a sentinel
// carrying a cause still satisfies errors.Is against the bare sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

// Wrap returns a copy of e carrying err as its cause.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

// Validation builds a 400-class error. Field messages are optional.
func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Errors: fields}
}

// Internal wraps an unexpected failure under a client-safe message.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	ErrUserNotFound       = &Error{Kind: KindNotFound, Message: "User not found"}
	ErrChannelNotFound    = &Error{Kind: KindNotFound, Message: "Channel not found"}
	ErrUserExists         = &Error{Kind: KindConflict, Message: "User with this email or username already exists"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Message: "Email is already in use"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "Access forbidden"}
	ErrTooManyAttempts    = &Error{Kind: KindTooManyRequests, Message: "Too many login attempts, try again later"}
	ErrInvalidOldPassword = &Error{Kind: KindValidation, Message: "Invalid old password"}

	ErrVideoNotFound  = &Error{Kind: KindNotFound, Message: "Video not found"}
	ErrVideoNotOwned  = &Error{Kind: KindNotFound, Message: "Video not found or you don't have permission"}
	ErrVideoMedia     = &Error{Kind: KindValidation, Message: "Video file and thumbnail are required"}
	ErrInvalidOwnerID = &Error{Kind: KindValidation, Message: "Invalid user id"}

	ErrInvalidCredentials   = &Error{Kind: KindUnauthorized, Message: "Invalid credentials"}
	ErrAuthRequired         = &Error{Kind: KindUnauthorized, Message: "Unauthorized request"}
	ErrInvalidAccessToken   = &Error{Kind: KindUnauthorized, Message: "Invalid access token"}
	ErrRefreshTokenRequired = &Error{Kind: KindUnauthorized, Message: "Refresh token is required"}
	ErrInvalidRefreshToken  = &Error{Kind: KindUnauthorized, Message: "Invalid refresh token"}
	ErrRefreshTokenReused   = &Error{Kind: KindUnauthorized, Message: "Refresh token is expired or used"}
	ErrTokenIssuance        = &Error{Kind: KindInternal, Message: "Failed to generate access and refresh tokens"}
)

// NormalizeIdentifier lowercases and trims a username or email the way the
// store persists them.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
