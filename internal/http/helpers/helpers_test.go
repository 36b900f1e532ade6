package helpers

import (
	"net/http"
	"net/netip"
	"net/http/httptest"
	"strings"
	"testing"

	httperrors "github.com/idryos/idryos-auth/internal/http/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := BearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "Basic abc")
	_, ok = BearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "bearer  abc.def ")
	tok, ok := BearerToken(r)
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	r.Header.Set("Authorization", "Bearer ")
	_, ok = BearerToken(r)
	assert.False(t, ok)
}

func TestClientIP_IgnoresHeadersWithoutTrustedProxy(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.7:5555"
	assert.Equal(t, "203.0.113.7", ClientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.3")
	assert.Equal(t, "203.0.113.7", ClientIP(r))
}

func TestClientIP_TrustedProxies(t *testing.T) {
	tp := TrustedProxies{netip.MustParsePrefix("10.0.0.0/8")}

	cases := []struct {
		name   string
		remote string
		xff    string
		realIP string
		want   string
	}{
		{"untrusted peer", "203.0.113.7:1", "198.51.100.1", "", "203.0.113.7"},
		{"single hop", "10.0.0.1:1", "198.51.100.1", "", "198.51.100.1"},
		{"spoofed left hop ignored", "10.0.0.1:1", "1.2.3.4, 198.51.100.1", "", "198.51.100.1"},
		{"skips trusted hops", "10.0.0.1:1", "1.2.3.4, 198.51.100.1, 10.0.0.9", "", "198.51.100.1"},
		{"all trusted", "10.0.0.1:1", "10.0.0.8, 10.0.0.9", "", "10.0.0.8"},
		{"garbage hop", "10.0.0.1:1", "1.2.3.4, not-an-ip", "", "10.0.0.1"},
		{"real ip fallback", "10.0.0.1:1", "", "198.51.100.2", "198.51.100.2"},
		{"no headers", "10.0.0.1:1", "", "", "10.0.0.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-IP", tc.realIP)
			}
			assert.Equal(t, tc.want, tp.ClientIP(r))
		})
	}
}

func TestReadJSON(t *testing.T) {
	var v struct {
		Email string `json:"email"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c","extra":1}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	require.NoError(t, ReadJSON(httptest.NewRecorder(), r, &v))
	assert.Equal(t, "a@b.c", v.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
	err := ReadJSON(httptest.NewRecorder(), r, &v)
	assert.Equal(t, http.StatusBadRequest, httperrors.FromError(err).HTTPStatus)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`a=b`))
	r.Header.Set("Content-Type", "text/plain")
	err = ReadJSON(httptest.NewRecorder(), r, &v)
	assert.Error(t, err)
}
