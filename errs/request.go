package errs

import (
	"errors"
	"net/http"
)

// Authentication & Authorization Errors
var (
	ErrSessionRequired = errors.New("login required")
	ErrAdminRequired   = errors.New("admin access required")
	ErrInvalidSession  = errors.New("invalid session")
	ErrExpiredSession  = errors.New("session expired")
)

// Authentication & Authorization Error Constructors
func NewSessionRequiredError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrSessionRequired,
		Details:    "You need to be logged in to access this page",
		Field:      "session",
	}
}

func NewAdminRequiredError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrAdminRequired,
		Details:    "Access denied. Only administrators can access this page",
		Field:      "session",
	}
}

func NewInvalidSessionError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrInvalidSession,
		Details:    "Session cookie is invalid",
		Field:      "session",
		Cause:      cause,
	}
}

func NewExpiredSessionError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrExpiredSession,
		Details:    "Session has expired",
		Field:      "session",
	}
}

func IsSessionRequiredError(err error) bool {
	return errors.Is(err, ErrSessionRequired)
}

func IsAdminRequiredError(err error) bool {
	return errors.Is(err, ErrAdminRequired)
}

func IsInvalidSessionError(err error) bool {
	return errors.Is(err, ErrInvalidSession)
}

func IsExpiredSessionError(err error) bool {
	return errors.Is(err, ErrExpiredSession)
}
