package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	httperrors "github.com/idryos/idryos-auth/internal/http/errors"
)

// MaxBodyBytes limita todos los bodies JSON/form.
const MaxBodyBytes = 1 << 20

// ReadJSON decodifica de forma tolerante (acepta campos desconocidos).
// Un body vacío deja v en su zero value.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return httperrors.Validation("Content-Type must be application/json")
		}
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return httperrors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

// IsForm reporta si el body viene como application/x-www-form-urlencoded.
func IsForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NoStore marca la respuesta como no cacheable (RFC 6749 §5.1).
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
