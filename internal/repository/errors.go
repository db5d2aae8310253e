package repository

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Common repository errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrCreateFailed = errors.New("failed to create record")
	ErrUpdateFailed = errors.New("failed to update record")
	ErrDeleteFailed = errors.New("failed to delete record")
	ErrDuplicateKey = errors.New("duplicate key violation")
	ErrForeignKey   = errors.New("foreign key violation")
)

// opError pairs a repository sentinel with the driver error behind it
type opError struct {
	op  error
	err error
}

func (e *opError) Error() string {
	return e.op.Error() + ": " + e.err.Error()
}

func (e *opError) Unwrap() []error {
	return []error{e.op, e.err}
}

// translate maps gorm errors onto repository sentinels. op names the failed
// operation when the error is not otherwise classified.
func translate(err error, op error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return &opError{op: ErrDuplicateKey, err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &opError{op: ErrForeignKey, err: err}
	case op == nil:
		return err
	default:
		return &opError{op: op, err: err}
	}
}

// isUniqueViolation catches driver errors that were not translated by the dialector
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
