// Package errors define el AppError que los controllers devuelven al cliente.
// Toda respuesta de error es {"error": <mensaje>, "status": <http status>}.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
)

// Kind es la taxonomía de fallas expuesta al cliente.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindRateLimited    Kind = "rate_limited"
	KindInternal       Kind = "internal"
	KindDatabase       Kind = "database"
)

var kindStatus = map[Kind]int{
	KindValidation:     http.StatusBadRequest,
	KindAuthentication: http.StatusUnauthorized,
	KindAuthorization:  http.StatusForbidden,
	KindNotFound:       http.StatusNotFound,
	KindRateLimited:    http.StatusTooManyRequests,
	KindInternal:       http.StatusInternalServerError,
	KindDatabase:       http.StatusInternalServerError,
}

type AppError struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Err        error // causa; se loguea, nunca se expone
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// New crea un AppError con el status de su Kind.
func New(kind Kind, message string) *AppError {
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &AppError{Kind: kind, Message: message, HTTPStatus: status}
}

// Wrap crea un AppError conservando la causa.
func Wrap(err error, kind Kind, message string) *AppError {
	e := New(kind, message)
	e.Err = err
	return e
}

// WithCause devuelve una COPIA con la causa; no muta los predefinidos.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// FromError convierte cualquier error en AppError; lo desconocido es Internal.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

func Validation(msg string) *AppError     { return New(KindValidation, msg) }
func Authentication(msg string) *AppError { return New(KindAuthentication, msg) }
func Authorization(msg string) *AppError  { return New(KindAuthorization, msg) }
func NotFound(msg string) *AppError       { return New(KindNotFound, msg) }

// Internal y Database ocultan la causa detrás de un mensaje genérico.
func Internal(err error) *AppError { return ErrInternal.WithCause(err) }
func Database(err error) *AppError { return ErrDatabase.WithCause(err) }

// Unexpected clasifica un error sin sentinel: fallas del store son Database,
// el resto Internal.
func Unexpected(err error) *AppError {
	if repo.IsStorage(err) {
		return Database(err)
	}
	return Internal(err)
}

// =================================================================================
// PREDEFINIDOS
// =================================================================================

var (
	ErrInvalidJSON      = New(KindValidation, "Invalid JSON body")
	ErrMethodNotAllowed = &AppError{Kind: KindValidation, Message: "Method not allowed", HTTPStatus: http.StatusMethodNotAllowed}
	ErrRouteNotFound    = New(KindNotFound, "Not found")
	ErrTokenMissing     = New(KindAuthentication, "Missing bearer token")
	ErrTooManyRequests  = New(KindRateLimited, "Too many requests")
	ErrInternal         = New(KindInternal, "Internal server error")
	ErrDatabase         = New(KindDatabase, "Database error")
)
