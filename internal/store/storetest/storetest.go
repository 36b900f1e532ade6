// Package storetest es la batería de conformidad que corre cada adapter de
// repository.Store.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run ejecuta todos los casos; newStore debe devolver un store vacío y migrado.
func Run(t *testing.T, newStore func(t *testing.T) repo.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("clients", func(t *testing.T) { testClients(t, newStore(t)) })
	t.Run("codes", func(t *testing.T) { testCodes(t, newStore(t)) })
	t.Run("exchange_race", func(t *testing.T) { testExchangeRace(t, newStore(t)) })
	t.Run("refresh_tokens", func(t *testing.T) { testRefreshTokens(t, newStore(t)) })
}

// Truncado a microsegundos: es la precisión de timestamptz.
func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func seed(t *testing.T, s repo.Store) (repo.User, repo.Client) {
	t.Helper()
	ctx := context.Background()
	ts := now()
	u := repo.User{ID: "u-1", Username: "bob", Email: "bob@x.com", PasswordHash: "$argon2id$fake", IsActive: true, CreatedAt: ts, UpdatedAt: ts}
	require.NoError(t, s.Users().Create(ctx, u))
	c := repo.Client{ID: "client-1", Name: "Demo", RedirectURIs: []string{"https://app/cb"}, Scopes: []string{"openid", "profile"}, IsActive: true, CreatedAt: ts}
	require.NoError(t, s.Clients().Create(ctx, c))
	return u, c
}

func testUsers(t *testing.T, s repo.Store) {
	ctx := context.Background()
	defer s.Close()
	u, _ := seed(t, s)

	got, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.DID)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	got, err = s.Users().GetByEmail(ctx, "BOB@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Users().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = s.Users().GetByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	exists, err := s.Users().ExistsByEmailOrUsername(ctx, "other@x.com", "bob")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.Users().ExistsByEmailOrUsername(ctx, "other@x.com", "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	dup := u
	dup.ID = "u-2"
	dup.Username = "bobby"
	assert.ErrorIs(t, s.Users().Create(ctx, dup), repo.ErrConflict)
	dup.Email = "bobby@x.com"
	dup.Username = "bob"
	assert.ErrorIs(t, s.Users().Create(ctx, dup), repo.ErrConflict)

	later := now().Add(time.Minute)
	require.NoError(t, s.Users().BindDID(ctx, u.ID, "did:key:zabc", later))
	require.NoError(t, s.Users().BindDID(ctx, u.ID, "did:key:zdef", later))
	got, err = s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DID)
	assert.Equal(t, "did:key:zdef", *got.DID)
	assert.True(t, later.Equal(got.UpdatedAt))
	assert.ErrorIs(t, s.Users().BindDID(ctx, "missing", "did:key:z", later), repo.ErrNotFound)

	require.NoError(t, s.Users().SetActive(ctx, u.ID, false, later))
	got, err = s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func testClients(t *testing.T, s repo.Store) {
	ctx := context.Background()
	defer s.Close()
	_, c := seed(t, s)

	got, err := s.Clients().Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.RedirectURIs, got.RedirectURIs)
	assert.Equal(t, c.Scopes, got.Scopes)
	assert.False(t, got.IsConfidential())

	assert.ErrorIs(t, s.Clients().Create(ctx, c), repo.ErrConflict)

	c2 := repo.Client{ID: "client-2", SecretHash: "$argon2id$x", Name: "Other", IsActive: true, CreatedAt: now()}
	require.NoError(t, s.Clients().Create(ctx, c2))
	list, err := s.Clients().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "client-1", list[0].ID)
	assert.Empty(t, list[1].RedirectURIs)

	require.NoError(t, s.Clients().SetActive(ctx, c.ID, false))
	got, err = s.Clients().Get(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = s.Clients().Get(ctx, "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.ErrorIs(t, s.Clients().SetActive(ctx, "missing", true), repo.ErrNotFound)
}

func testCodes(t *testing.T, s repo.Store) {
	ctx := context.Background()
	defer s.Close()
	u, c := seed(t, s)
	ts := now()

	code := repo.AuthorizationCode{
		CodeHash: "hash-1", ClientID: c.ID, UserID: u.ID, RedirectURI: "https://app/cb",
		Scopes: []string{"openid"}, ExpiresAt: ts.Add(5 * time.Minute), CreatedAt: ts,
	}
	require.NoError(t, s.Tokens().CreateCode(ctx, code))
	assert.ErrorIs(t, s.Tokens().CreateCode(ctx, code), repo.ErrConflict)

	got, err := s.Tokens().GetCode(ctx, "hash-1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
	assert.Equal(t, []string{"openid"}, got.Scopes)
	assert.True(t, code.ExpiresAt.Equal(got.ExpiresAt))

	_, err = s.Tokens().GetCode(ctx, "hash-1", "other-client")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	rt := repo.RefreshToken{TokenHash: "rt-1", ClientID: c.ID, UserID: u.ID, Scopes: got.Scopes, ExpiresAt: ts.Add(720 * time.Hour), CreatedAt: ts}
	assert.ErrorIs(t, s.Tokens().ExchangeCode(ctx, "hash-1", "other-client", rt), repo.ErrNotFound)
	require.NoError(t, s.Tokens().ExchangeCode(ctx, "hash-1", c.ID, rt))

	_, err = s.Tokens().GetCode(ctx, "hash-1", c.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	rt.TokenHash = "rt-2"
	assert.ErrorIs(t, s.Tokens().ExchangeCode(ctx, "hash-1", c.ID, rt), repo.ErrNotFound)
	_, err = s.Tokens().GetRefreshToken(ctx, "rt-2", c.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound, "un canje perdido no debe insertar refresh token")

	code.CodeHash = "hash-2"
	require.NoError(t, s.Tokens().CreateCode(ctx, code))
	require.NoError(t, s.Tokens().DeleteCode(ctx, "hash-2"))
	assert.ErrorIs(t, s.Tokens().DeleteCode(ctx, "hash-2"), repo.ErrNotFound)
}

func testExchangeRace(t *testing.T, s repo.Store) {
	ctx := context.Background()
	defer s.Close()
	u, c := seed(t, s)
	ts := now()
	require.NoError(t, s.Tokens().CreateCode(ctx, repo.AuthorizationCode{
		CodeHash: "race", ClientID: c.ID, UserID: u.ID, RedirectURI: "https://app/cb",
		ExpiresAt: ts.Add(time.Minute), CreatedAt: ts,
	}))

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Tokens().ExchangeCode(ctx, "race", c.ID, repo.RefreshToken{
				TokenHash: "rt-race-" + string(rune('a'+i)), ClientID: c.ID, UserID: u.ID,
				ExpiresAt: ts.Add(time.Hour), CreatedAt: ts,
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func testRefreshTokens(t *testing.T, s repo.Store) {
	ctx := context.Background()
	defer s.Close()
	u, c := seed(t, s)
	ts := now()
	require.NoError(t, s.Tokens().CreateCode(ctx, repo.AuthorizationCode{
		CodeHash: "c", ClientID: c.ID, UserID: u.ID, RedirectURI: "https://app/cb",
		ExpiresAt: ts.Add(time.Minute), CreatedAt: ts,
	}))
	rt := repo.RefreshToken{TokenHash: "rt", ClientID: c.ID, UserID: u.ID, Scopes: []string{"openid", "profile"}, ExpiresAt: ts.Add(time.Hour), CreatedAt: ts}
	require.NoError(t, s.Tokens().ExchangeCode(ctx, "c", c.ID, rt))

	got, err := s.Tokens().GetRefreshToken(ctx, "rt", c.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
	assert.Equal(t, rt.Scopes, got.Scopes)
	assert.True(t, rt.ExpiresAt.Equal(got.ExpiresAt))

	_, err = s.Tokens().GetRefreshToken(ctx, "rt", "other-client")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = s.Tokens().GetRefreshToken(ctx, "nope", c.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
