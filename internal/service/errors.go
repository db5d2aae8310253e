package service

import (
	"fmt"

	"example.com/outcry/internal/repository"

	"github.com/pkg/errors"
)

// Service errors. Handlers map them onto HTTP statuses.
var (
	ErrNotFound             = repository.ErrNotFound
	ErrConflict             = errors.New("conflict")
	ErrValidation           = errors.New("validation failed")
	ErrStorageNotConfigured = errors.New("attachment storage is not configured")
	ErrSearchDisabled       = errors.New("search is not configured")
)

// Error carries a caller facing message for one of the service error kinds
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func notFound(entity string, id interface{}) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

func conflictf(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func invalid(err error) error {
	return &Error{Kind: ErrValidation, Message: err.Error(), Cause: err}
}

// orNotFound names the missing entity when a lookup comes back empty
func orNotFound(err error, entity string, id interface{}) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(entity, id)
	}
	return err
}
