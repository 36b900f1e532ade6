package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/idryos/idryos-auth/internal/http/dto/auth"
	jwtx "github.com/idryos/idryos-auth/internal/jwt"
	"github.com/idryos/idryos-auth/internal/security/password"
	"github.com/idryos/idryos-auth/internal/store/memory"
)

const secret = "test-secret-test-secret-test-secret!"

func newService(t *testing.T) (AuthService, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc := NewAuthService(Deps{
		Users:  st.Users(),
		Hasher: password.NewHasher(password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32}),
		Issuer: jwtx.NewIssuer(secret, 60*time.Minute),
	})
	return svc, st
}

func register(t *testing.T, svc AuthService) *dto.UserResponse {
	t.Helper()
	u, err := svc.Register(context.Background(), dto.RegisterRequest{Username: "bob", Email: "bob@x.com", Password: "password1"})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc, st := newService(t)
	u := register(t, svc)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "bob", u.Username)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.DID)

	stored, err := st.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password1", stored.PasswordHash)
	assert.Contains(t, stored.PasswordHash, "$argon2id$")
}

func TestRegister_Errors(t *testing.T) {
	svc, _ := newService(t)
	register(t, svc)
	ctx := context.Background()

	cases := []struct {
		name string
		in   dto.RegisterRequest
		want error
	}{
		{"empty username", dto.RegisterRequest{Username: " ", Email: "a@x.com", Password: "password1"}, ErrMissingFields},
		{"empty email", dto.RegisterRequest{Username: "a", Password: "password1"}, ErrMissingFields},
		{"empty password", dto.RegisterRequest{Username: "a", Email: "a@x.com"}, ErrMissingFields},
		{"seven chars", dto.RegisterRequest{Username: "a", Email: "a@x.com", Password: "1234567"}, ErrPasswordTooShort},
		{"same email", dto.RegisterRequest{Username: "alice", Email: "BOB@x.com", Password: "password1"}, ErrUserExists},
		{"same username", dto.RegisterRequest{Username: "bob", Email: "other@x.com", Password: "password1"}, ErrUserExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	u := register(t, svc)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: " Bob@X.com ", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, u.ID, resp.User.ID)

	sub, err := jwtx.VerifyToken(resp.AccessToken, secret, jwtx.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)

	sub, err = jwtx.VerifyToken(resp.RefreshToken, secret, jwtx.KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, st := newService(t)
	u := register(t, svc)
	ctx := context.Background()

	_, errUnknown := svc.Login(ctx, dto.LoginRequest{Email: "nobody@x.com", Password: "password1"})
	_, errWrong := svc.Login(ctx, dto.LoginRequest{Email: "bob@x.com", Password: "password2"})
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())

	require.NoError(t, st.Users().SetActive(ctx, u.ID, false, time.Now()))
	_, err := svc.Login(ctx, dto.LoginRequest{Email: "bob@x.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, st := newService(t)
	u := register(t, svc)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "bob@x.com", Password: "password1"})
	require.NoError(t, err)

	resp, err := svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	sub, err := jwtx.VerifyToken(resp.AccessToken, secret, jwtx.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)

	// un access token no sirve como refresh
	_, err = svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, dto.RefreshRequest{})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	require.NoError(t, st.Users().SetActive(ctx, u.ID, false, time.Now()))
	_, err = svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}
