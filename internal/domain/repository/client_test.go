package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClient_AllowsRedirect(t *testing.T) {
	c := Client{RedirectURIs: []string{"https://app.example.com/cb", "http://localhost:3000/cb"}}
	assert.True(t, c.AllowsRedirect("https://app.example.com/cb"))
	assert.False(t, c.AllowsRedirect("https://app.example.com/cb/"))
	assert.False(t, c.AllowsRedirect("https://evil.example.com/cb"))
	assert.False(t, c.AllowsRedirect(""))
}

func TestClient_GrantsScopes(t *testing.T) {
	c := Client{Scopes: []string{"openid", "profile", "email"}}
	assert.True(t, c.GrantsScopes(nil))
	assert.True(t, c.GrantsScopes([]string{"openid", "email"}))
	assert.False(t, c.GrantsScopes([]string{"openid", "admin"}))
}

func TestExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, AuthorizationCode{ExpiresAt: now}.Expired(now))
	assert.False(t, AuthorizationCode{ExpiresAt: now.Add(time.Second)}.Expired(now))
	assert.True(t, RefreshToken{ExpiresAt: now.Add(-time.Second)}.Expired(now))
}
