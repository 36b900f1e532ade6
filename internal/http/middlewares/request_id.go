package middlewares

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// HeaderRequestID se propaga si el cliente lo envía.
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLen acota lo que aceptamos del cliente antes de loguearlo.
const maxRequestIDLen = 128

// WithRequestID propaga X-Request-ID o genera un uuid v4.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(HeaderRequestID))
			if rid == "" || len(rid) > maxRequestIDLen {
				rid = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, rid)
			next.ServeHTTP(w, r.WithContext(setRequestID(r.Context(), rid)))
		})
	}
}
