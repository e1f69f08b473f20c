package repositories

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// ErrDealerNotFound is returned when no dealership row matches a dealer number
var ErrDealerNotFound = errors.New("dealer not found")

// StorageError wraps a driver failure with the operation that hit it and,
// when the server reported one, the SQLSTATE code.
type StorageError struct {
	Op   string
	Code string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %v (SQLSTATE %s)", e.Op, e.Err, e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// wrapStorage turns a raw driver error into a *StorageError. Not-found and
// already wrapped errors pass through unchanged.
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDealerNotFound) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}

	se = &StorageError{Op: op, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		se.Code = pgErr.Code
	}
	return se
}
