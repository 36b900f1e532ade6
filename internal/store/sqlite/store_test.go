package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/idryos/idryos-auth/internal/store/migrate"
	"github.com/idryos/idryos-auth/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "idryos.db"))
	require.NoError(t, err)
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repo.Store { return open(t) })
}

func TestOpen_MigratesOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "idryos.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	v, err := migrate.Version(ctx, s.DB(), migrate.SQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	v, err = migrate.Version(ctx, s.DB(), migrate.SQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestForeignKeysEnforced(t *testing.T) {
	s := open(t)
	defer s.Close()
	err := s.Tokens().CreateCode(context.Background(), repo.AuthorizationCode{
		CodeHash: "x", ClientID: "ghost", UserID: "ghost", RedirectURI: "https://app/cb",
	})
	assert.Error(t, err)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), " ")
	assert.Error(t, err)
}
