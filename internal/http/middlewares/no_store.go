package middlewares

import (
	"net/http"

	"github.com/idryos/idryos-auth/internal/http/helpers"
)

// WithNoStore marca la respuesta como no cacheable, errores incluidos.
func WithNoStore() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			helpers.NoStore(w)
			next.ServeHTTP(w, r)
		})
	}
}
