package middlewares

import (
	"math"
	"net/http"
	"strconv"

	httperrors "github.com/idryos/idryos-auth/internal/http/errors"
	"github.com/idryos/idryos-auth/internal/http/helpers"
	"github.com/idryos/idryos-auth/internal/observability/logger"
	"github.com/idryos/idryos-auth/internal/rate"
)

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPRateKey limita por IP del peer y path; ignora headers de proxy.
func IPRateKey(r *http.Request) string {
	return helpers.ClientIP(r) + "|" + r.URL.Path
}

// ProxyRateKey es IPRateKey resolviendo la IP real detrás de proxies de
// confianza.
func ProxyRateKey(proxies helpers.TrustedProxies) RateKeyFunc {
	if len(proxies) == 0 {
		return IPRateKey
	}
	return func(r *http.Request) string {
		return proxies.ClientIP(r) + "|" + r.URL.Path
	}
}

// WithRateLimit corta con 429 + Retry-After al superar el límite. Si el
// limiter falla, el request pasa.
func WithRateLimit(l rate.Limiter, key RateKeyFunc) Middleware {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if key == nil {
		key = IPRateKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(r.Context(), key(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				httperrors.WriteError(w, r, httperrors.ErrTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
