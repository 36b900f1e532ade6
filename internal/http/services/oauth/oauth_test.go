package oauth

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idryos/idryos-auth/internal/cache"
	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/oauth"
	jwtx "github.com/idryos/idryos-auth/internal/jwt"
	"github.com/idryos/idryos-auth/internal/security/password"
	tokens "github.com/idryos/idryos-auth/internal/security/token"
	"github.com/idryos/idryos-auth/internal/store/memory"
)

const secret = "test-secret-test-secret-test-secret!"

type fixture struct {
	svc     OAuthService
	store   *memory.Store
	issuer  *jwtx.Issuer
	clock   time.Time
	bearer  string
	grants  map[string]int
	grantMu sync.Mutex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:  memory.New(),
		issuer: jwtx.NewIssuer(secret, 60*time.Minute),
		clock:  time.Now().UTC(),
		grants: map[string]int{},
	}
	hasher := password.NewHasher(password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32})
	secretHash, err := hasher.Hash("s3cret")
	require.NoError(t, err)

	require.NoError(t, f.store.Users().Create(ctx, repo.User{
		ID: "u-1", Username: "bob", Email: "bob@x.com", PasswordHash: "x", IsActive: true,
		CreatedAt: f.clock, UpdatedAt: f.clock,
	}))
	require.NoError(t, f.store.Clients().Create(ctx, repo.Client{
		ID: "public", Name: "SPA", RedirectURIs: []string{"https://app/cb"},
		Scopes: []string{"openid", "profile", "email"}, IsActive: true, CreatedAt: f.clock,
	}))
	require.NoError(t, f.store.Clients().Create(ctx, repo.Client{
		ID: "confidential", SecretHash: secretHash, Name: "Backend", RedirectURIs: []string{"https://api/cb"},
		Scopes: []string{"openid"}, IsActive: true, CreatedAt: f.clock,
	}))
	require.NoError(t, f.store.Clients().Create(ctx, repo.Client{
		ID: "disabled", Name: "Old", RedirectURIs: []string{"https://old/cb"},
		Scopes: []string{"openid"}, IsActive: false, CreatedAt: f.clock,
	}))

	f.bearer, _, err = f.issuer.IssueAccess("u-1")
	require.NoError(t, err)

	f.svc = NewOAuthService(Deps{
		Clients: f.store.Clients(),
		Users:   f.store.Users(),
		Tokens:  f.store.Tokens(),
		Issuer:  f.issuer,
		Secrets: hasher,
		Now:     func() time.Time { return f.clock },
		Observer: func(g GrantType, outcome string) {
			f.grantMu.Lock()
			f.grants[string(g)+"/"+outcome]++
			f.grantMu.Unlock()
		},
	})
	return f
}

func (f *fixture) authorize(t *testing.T, clientID, redirect string) string {
	t.Helper()
	resp, err := f.svc.Authorize(context.Background(), f.bearer, dto.AuthorizeRequest{
		ClientID: clientID, RedirectURI: redirect, ResponseType: "code", State: "xyz",
	})
	require.NoError(t, err)
	u, err := url.Parse(resp.AuthorizeURL)
	require.NoError(t, err)
	return u.Query().Get("code")
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t)
	resp, err := f.svc.Authorize(context.Background(), f.bearer, dto.AuthorizeRequest{
		ClientID: "public", RedirectURI: "https://app/cb", ResponseType: "code", Scope: "openid email", State: "xyz",
	})
	require.NoError(t, err)

	u, err := url.Parse(resp.AuthorizeURL)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "app", u.Host)
	assert.Equal(t, "/cb", u.Path)
	assert.Equal(t, "xyz", u.Query().Get("state"))

	code := u.Query().Get("code")
	require.NotEmpty(t, code)

	// se guarda el hash, nunca el código
	_, err = f.store.Tokens().GetCode(context.Background(), code, "public")
	assert.True(t, repo.IsNotFound(err))
	ac, err := f.store.Tokens().GetCode(context.Background(), tokens.SHA256Base64URL(code), "public")
	require.NoError(t, err)
	assert.Equal(t, "u-1", ac.UserID)
	assert.Equal(t, []string{"openid", "email"}, ac.Scopes)
	assert.Equal(t, "https://app/cb", ac.RedirectURI)
	assert.WithinDuration(t, f.clock.Add(DefaultCodeTTL), ac.ExpiresAt, time.Second)
}

func TestAuthorize_DefaultScope(t *testing.T) {
	f := newFixture(t)
	code := f.authorize(t, "public", "https://app/cb")
	ac, err := f.store.Tokens().GetCode(context.Background(), tokens.SHA256Base64URL(code), "public")
	require.NoError(t, err)
	assert.Equal(t, []string{"openid", "profile", "email"}, ac.Scopes)
}

func TestAuthorize_Errors(t *testing.T) {
	f := newFixture(t)
	refresh, _, err := f.issuer.IssueRefresh("u-1")
	require.NoError(t, err)
	ghost, _, err := f.issuer.IssueAccess("ghost")
	require.NoError(t, err)

	ok := dto.AuthorizeRequest{ClientID: "public", RedirectURI: "https://app/cb", ResponseType: "code"}
	cases := []struct {
		name   string
		bearer string
		mut    func(*dto.AuthorizeRequest)
		want   error
	}{
		{"unknown client", f.bearer, func(r *dto.AuthorizeRequest) { r.ClientID = "nope" }, ErrInvalidClient},
		{"disabled client", f.bearer, func(r *dto.AuthorizeRequest) { r.ClientID = "disabled"; r.RedirectURI = "https://old/cb" }, ErrClientDisabled},
		{"unregistered redirect", f.bearer, func(r *dto.AuthorizeRequest) { r.RedirectURI = "https://evil/cb" }, ErrInvalidRedirectURI},
		{"empty redirect", f.bearer, func(r *dto.AuthorizeRequest) { r.RedirectURI = "" }, ErrInvalidRedirectURI},
		{"implicit", f.bearer, func(r *dto.AuthorizeRequest) { r.ResponseType = "token" }, ErrUnsupportedResponse},
		{"scope not granted", f.bearer, func(r *dto.AuthorizeRequest) { r.Scope = "openid admin" }, ErrInvalidScope},
		{"no bearer", "", func(*dto.AuthorizeRequest) {}, ErrInvalidToken},
		{"refresh as bearer", refresh, func(*dto.AuthorizeRequest) {}, ErrInvalidToken},
		{"unknown user", ghost, func(*dto.AuthorizeRequest) {}, ErrInvalidToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := ok
			tc.mut(&in)
			_, err := f.svc.Authorize(context.Background(), tc.bearer, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestToken_AuthorizationCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.authorize(t, "public", "https://app/cb")

	resp, err := f.svc.Token(ctx, dto.TokenRequest{GrantType: "authorization_code", ClientID: "public", Code: code, RedirectURI: "https://app/cb"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "openid profile email", resp.Scope)
	require.NotEmpty(t, resp.RefreshToken)

	sub, err := f.issuer.Verify(resp.AccessToken, jwtx.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "u-1", sub)

	// el refresh opaco no es un JWT
	_, err = f.issuer.Verify(resp.RefreshToken, jwtx.KindRefresh)
	assert.Error(t, err)

	rt, err := f.store.Tokens().GetRefreshToken(ctx, tokens.SHA256Base64URL(resp.RefreshToken), "public")
	require.NoError(t, err)
	assert.WithinDuration(t, f.clock.Add(30*24*time.Hour), rt.ExpiresAt, time.Second)

	// un solo uso
	_, err = f.svc.Token(ctx, dto.TokenRequest{GrantType: "authorization_code", ClientID: "public", Code: code})
	assert.ErrorIs(t, err, ErrInvalidCode)

	assert.Equal(t, 1, f.grants["authorization_code/success"])
	assert.Equal(t, 1, f.grants["authorization_code/error"])
}

func TestToken_CodeExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.authorize(t, "public", "https://app/cb")

	f.clock = f.clock.Add(10 * time.Minute)
	_, err := f.svc.Token(ctx, dto.TokenRequest{GrantType: "authorization_code", ClientID: "public", Code: code})
	assert.ErrorIs(t, err, ErrCodeExpired)

	// el vencido se borra
	_, err = f.svc.Token(ctx, dto.TokenRequest{GrantType: "authorization_code", ClientID: "public", Code: code})
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestToken_CodeErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.authorize(t, "public", "https://app/cb")

	_, err := f.svc.Token(ctx, dto.TokenRequest{GrantType: "authorization_code", ClientID: "public"})
	assert.ErrorIs(t, err, ErrCodeRequired)

	_, err = f.svc.Token(ctx, dto.TokenRequest{GrantType: "authorization_code", ClientID: "public", Code: "garbage"})
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = f.svc.Token(ctx, dto.TokenRequest{GrantType: "authorization_code", ClientID: "public", Code: code, RedirectURI: "https://app/other"})
	assert.ErrorIs(t, err, ErrInvalidCode)

	// el código está ligado al cliente que lo pidió
	_, err = f.svc.Token(ctx, dto.TokenRequest{GrantType: "authorization_code", ClientID: "confidential", ClientSecret: "s3cret", Code: code})
	assert.ErrorIs(t, err, ErrInvalidCode)

	// los rechazos anteriores no consumen el código
	_, err = f.svc.Token(ctx, dto.TokenRequest{GrantType: "authorization_code", ClientID: "public", Code: code})
	assert.NoError(t, err)
}

func TestToken_ConcurrentExchange(t *testing.T) {
	f := newFixture(t)
	code := f.authorize(t, "public", "https://app/cb")

	const n = 8
	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Token(context.Background(), dto.TokenRequest{GrantType: "authorization_code", ClientID: "public", Code: code})
			if err == nil {
				wins.Add(1)
			} else if assert.ErrorIs(t, err, ErrInvalidCode) {
				losses.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(n-1), losses.Load())
}

func TestToken_ClientAuthentication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := dto.TokenRequest{GrantType: "refresh_token", RefreshToken: "x"}

	req.ClientID = "nope"
	_, err := f.svc.Token(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidClient)

	req.ClientID = "disabled"
	_, err = f.svc.Token(ctx, req)
	assert.ErrorIs(t, err, ErrClientDisabled)

	req.ClientID = "confidential"
	_, err = f.svc.Token(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidClient)

	req.ClientSecret = "wrong"
	_, err = f.svc.Token(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidClient)

	req.ClientSecret = "s3cret"
	_, err = f.svc.Token(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestToken_RefreshGrant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code := f.authorize(t, "public", "https://app/cb")
	first, err := f.svc.Token(ctx, dto.TokenRequest{GrantType: "authorization_code", ClientID: "public", Code: code})
	require.NoError(t, err)

	for range 2 {
		resp, err := f.svc.Token(ctx, dto.TokenRequest{GrantType: "refresh_token", ClientID: "public", RefreshToken: first.RefreshToken})
		require.NoError(t, err)
		assert.Empty(t, resp.RefreshToken)
		assert.Equal(t, "openid profile email", resp.Scope)
		sub, err := f.issuer.Verify(resp.AccessToken, jwtx.KindAccess)
		require.NoError(t, err)
		assert.Equal(t, "u-1", sub)
	}

	_, err = f.svc.Token(ctx, dto.TokenRequest{GrantType: "refresh_token", ClientID: "public"})
	assert.ErrorIs(t, err, ErrRefreshRequired)

	_, err = f.svc.Token(ctx, dto.TokenRequest{GrantType: "refresh_token", ClientID: "public", RefreshToken: "unknown"})
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	f.clock = f.clock.Add(31 * 24 * time.Hour)
	_, err = f.svc.Token(ctx, dto.TokenRequest{GrantType: "refresh_token", ClientID: "public", RefreshToken: first.RefreshToken})
	assert.ErrorIs(t, err, ErrRefreshExpired)
}

func TestToken_UnsupportedGrant(t *testing.T) {
	f := newFixture(t)
	for _, g := range []string{"", "password", "client_credentials", "implicit"} {
		_, err := f.svc.Token(context.Background(), dto.TokenRequest{GrantType: g, ClientID: "public"})
		assert.ErrorIs(t, err, ErrUnsupportedGrantType, g)
	}
}

type countingClients struct {
	repo.ClientRepository
	calls atomic.Int32
}

func (c *countingClients) Get(ctx context.Context, id string) (*repo.Client, error) {
	c.calls.Add(1)
	return c.ClientRepository.Get(ctx, id)
}

func TestCachedClients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	counting := &countingClients{ClientRepository: f.store.Clients()}
	lookup := NewCachedClients(counting, cache.NewMemory("test:", time.Minute), time.Minute)

	c, err := lookup.Get(ctx, "public")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app/cb"}, c.RedirectURIs)

	require.NoError(t, f.store.Clients().SetActive(ctx, "public", false))
	c, err = lookup.Get(ctx, "public")
	require.NoError(t, err)
	assert.True(t, c.IsActive, "servido desde cache")
	assert.Equal(t, int32(1), counting.calls.Load())

	_, err = lookup.Get(ctx, "nope")
	assert.True(t, repo.IsNotFound(err))
	_, err = lookup.Get(ctx, "nope")
	assert.True(t, repo.IsNotFound(err))
	assert.Equal(t, int32(3), counting.calls.Load())
}

func TestEvictClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shared := cache.NewMemory("test:", time.Minute)
	lookup := NewCachedClients(f.store.Clients(), shared, time.Hour)

	_, err := lookup.Get(ctx, "public")
	require.NoError(t, err)
	require.NoError(t, f.store.Clients().SetActive(ctx, "public", false))

	c, err := lookup.Get(ctx, "public")
	require.NoError(t, err)
	require.True(t, c.IsActive)

	require.NoError(t, EvictClient(ctx, shared, "public"))
	c, err = lookup.Get(ctx, "public")
	require.NoError(t, err)
	assert.False(t, c.IsActive)

	// borrar algo que no está no es error
	assert.NoError(t, EvictClient(ctx, shared, "nope"))
}

func TestParseGrantType(t *testing.T) {
	g, err := ParseGrantType("authorization_code")
	require.NoError(t, err)
	assert.Equal(t, GrantAuthorizationCode, g)
	_, err = ParseGrantType("Authorization_Code")
	assert.ErrorIs(t, err, ErrUnsupportedGrantType)
}
