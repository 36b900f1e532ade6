package did

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diddoc "github.com/idryos/idryos-auth/internal/did"
	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/did"
	"github.com/idryos/idryos-auth/internal/store/memory"
)

func newService(t *testing.T) (DIDService, *memory.Store) {
	t.Helper()
	st := memory.New()
	old := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, st.Users().Create(context.Background(), repo.User{
		ID: "u-1", Username: "bob", Email: "bob@x.com", PasswordHash: "x", IsActive: true, CreatedAt: old, UpdatedAt: old,
	}))
	return NewDIDService(Deps{Users: st.Users(), Generator: diddoc.NewGenerator("localhost:8000")}), st
}

func TestCreate_Key(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, dto.CreateRequest{Method: "key", UserID: "u-1"})
	require.NoError(t, err)
	assert.Regexp(t, `^did:key:z[A-Za-z0-9_-]+$`, resp.DID)
	assert.Equal(t, resp.DID, resp.Document.ID)

	u, err := st.Users().GetByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, u.DID)
	assert.Equal(t, resp.DID, *u.DID)
	assert.True(t, u.UpdatedAt.After(u.CreatedAt))

	// did:key se resuelve al mismo documento de claves
	doc, err := svc.Resolve(ctx, resp.DID)
	require.NoError(t, err)
	assert.Equal(t, resp.Document.VerificationMethod, doc.VerificationMethod)
}

func TestCreate_WebReplacesPrevious(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateRequest{Method: "key", UserID: "u-1"})
	require.NoError(t, err)
	resp, err := svc.Create(ctx, dto.CreateRequest{Method: "web", UserID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, "did:web:localhost%3A8000:users:u-1", resp.DID)

	u, err := st.Users().GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, resp.DID, *u.DID)

	_, err = svc.Resolve(ctx, resp.DID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_Errors(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateRequest{Method: "key", UserID: "ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	// usuario inexistente tiene prioridad sobre método inválido
	_, err = svc.Create(ctx, dto.CreateRequest{Method: "ion", UserID: "ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Create(ctx, dto.CreateRequest{Method: "ion", UserID: "u-1"})
	assert.ErrorIs(t, err, ErrUnsupportedMethod)

	u, err := st.Users().GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Nil(t, u.DID)
}

func TestResolve_Unknown(t *testing.T) {
	svc, _ := newService(t)
	for _, id := range []string{"", "did:ion:abc", "did:key:zNOT*base64", "did:key:zAAAA"} {
		_, err := svc.Resolve(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
}
