package repo

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned by the single-row lookups.
	ErrNotFound = errors.New("repo: not found")
	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("repo: duplicate key")
	// ErrReference reports a foreign key violation.
	ErrReference = errors.New("repo: missing reference")
)

// PostgreSQL SQLSTATE codes.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }

// wrapError maps driver errors to the package sentinels, keeping the driver error in the chain.
func wrapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case uniqueViolation:
		return errors.Join(ErrDuplicate, err)
	case foreignKeyViolation:
		return errors.Join(ErrReference, err)
	}
	return err
}
