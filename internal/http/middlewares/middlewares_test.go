package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idryos/idryos-auth/internal/http/helpers"
	"github.com/idryos/idryos-auth/internal/rate"
)

func TestChain_Order(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "h") }), mk("a"), mk("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "h"}, order)
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "from-client")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "from-client", seen)
}

func TestWithRecover(t *testing.T) {
	h := WithRecover()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil)) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error","status":500}`, rec.Body.String())
}

func TestWithLogging_RecordsStatus(t *testing.T) {
	h := WithLogging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("x"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

type stubLimiter struct {
	res rate.Result
	err error
}

func (s stubLimiter) Allow(context.Context, string) (rate.Result, error) { return s.res, s.err }

func TestWithRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	WithRateLimit(stubLimiter{res: rate.Result{Allowed: false, RetryAfter: 1500 * time.Millisecond}}, nil)(ok).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests","status":429}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WithRateLimit(stubLimiter{res: rate.Result{Allowed: true, Remaining: 4}}, nil)(ok).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))

	// limiter caído: fail open
	rec = httptest.NewRecorder()
	WithRateLimit(stubLimiter{err: errors.New("redis down")}, nil)(ok).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	WithRateLimit(nil, nil)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestIPRateKey_IgnoresForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "203.0.113.7|/auth/login", IPRateKey(req))
}

func TestProxyRateKey(t *testing.T) {
	key := ProxyRateKey(helpers.TrustedProxies{netip.MustParsePrefix("10.0.0.0/8")})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.5:443"
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 198.51.100.1, 10.0.0.9")
	assert.Equal(t, "198.51.100.1|/auth/login", key(req))

	// peer fuera de la lista: el header no cuenta
	req.RemoteAddr = "203.0.113.7:5555"
	assert.Equal(t, "203.0.113.7|/auth/login", key(req))

	req = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "203.0.113.7|/auth/login", ProxyRateKey(nil)(req))
}

// fixedLimiter no cruza de ventana durante el test.
func fixedLimiter(max int) *rate.MemoryLimiter {
	l := rate.NewMemoryLimiter("t:", max, time.Minute)
	at := time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)
	l.Now = func() time.Time { return at }
	return l
}

func TestWithRateLimit_RotatingForwardedForStillLimited(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := WithRateLimit(fixedLimiter(2), IPRateKey)(ok)

	codes := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429, 429, 429, 429}, codes)
}

func TestWithRateLimit_TrustedProxySeparatesClients(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	proxies := helpers.TrustedProxies{netip.MustParsePrefix("10.0.0.0/8")}
	h := WithRateLimit(fixedLimiter(1), ProxyRateKey(proxies))(ok)

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.5:443"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
	// spoof a la izquierda del hop real: misma clave
	assert.Equal(t, http.StatusTooManyRequests, send("9.9.9.9, 198.51.100.2"))
}

func TestWithCORS_SimpleRequest(t *testing.T) {
	h := WithCORS([]string{"http://app.example/"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
