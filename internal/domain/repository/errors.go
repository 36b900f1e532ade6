package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica una violación de unicidad.
	ErrConflict = errors.New("conflict")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// StorageError envuelve una falla del backend que no es NotFound ni Conflict.
type StorageError struct {
	Op  string
	Err error
}

func Storage(op string, err error) error { return &StorageError{Op: op, Err: err} }

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
