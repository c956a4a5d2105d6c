package errors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalid       = errors.New("invalid")
	ErrConflict      = errors.New("conflict")
	ErrInternal      = errors.New("internal")
	ErrSkipped       = errors.New("skipped")
	ErrMissingConfig = errors.New("missing configuration")
	ErrIncomplete    = errors.New("incomplete import")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
