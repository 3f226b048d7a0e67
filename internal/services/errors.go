package services

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups for entities that are missing or not owned by
// the calling user. Handlers map it to 404.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is returned by failed logins.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ValidationError flags missing or invalid input fields. It maps to 400 and
// is never written to the deploy log.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError flags state conflicts: deletes blocked by active route
// references, duplicate script names, already-adopted domains. RoutesCount
// is non-zero for reference-blocked deletes so the handler can surface it.
type ConflictError struct {
	Msg         string
	EntityName  string
	RoutesCount int64
}

func (e *ConflictError) Error() string { return e.Msg }
