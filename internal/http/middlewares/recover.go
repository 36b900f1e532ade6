package middlewares

import (
	"net/http"

	"go.uber.org/zap"

	httperrors "github.com/idryos/idryos-auth/internal/http/errors"
	"github.com/idryos/idryos-auth/internal/observability/logger"
)

// WithRecover captura panics y devuelve un 500 en lugar de cortar la conexión.
// http.ErrAbortHandler se re-lanza.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.From(r.Context()).Error("panic recovered",
					logger.Op("recover"),
					logger.Any("panic", rec),
					zap.Stack("stack"),
				)
				httperrors.WriteError(w, r, httperrors.ErrInternal)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
