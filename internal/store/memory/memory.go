// Package memory implementa repository.Store en memoria. Pensado para tests
// y desarrollo local (DATABASE_URL=memory://).
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	repo "github.com/idryos/idryos-auth/internal/domain/repository"
)

type Store struct {
	mu      sync.RWMutex
	users   map[string]repo.User
	clients map[string]repo.Client
	codes   map[string]repo.AuthorizationCode
	refresh map[string]repo.RefreshToken
}

func New() *Store {
	return &Store{
		users:   make(map[string]repo.User),
		clients: make(map[string]repo.Client),
		codes:   make(map[string]repo.AuthorizationCode),
		refresh: make(map[string]repo.RefreshToken),
	}
}

func (s *Store) Users() repo.UserRepository     { return userRepo{s} }
func (s *Store) Clients() repo.ClientRepository { return clientRepo{s} }
func (s *Store) Tokens() repo.TokenRepository   { return tokenRepo{s} }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

// =================================================================================
// USERS
// =================================================================================

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u repo.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; ok {
		return repo.ErrConflict
	}
	for _, x := range r.s.users {
		if strings.EqualFold(x.Email, u.Email) || x.Username == u.Username {
			return repo.ErrConflict
		}
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id string) (*repo.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*repo.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r userRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r userRepo) BindDID(ctx context.Context, userID, did string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.DID = &did
	u.UpdatedAt = at
	r.s.users[userID] = u
	return nil
}

func (r userRepo) SetActive(ctx context.Context, userID string, active bool, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = at
	r.s.users[userID] = u
	return nil
}

func cloneUser(u repo.User) repo.User {
	if u.DID != nil {
		d := *u.DID
		u.DID = &d
	}
	return u
}

// =================================================================================
// CLIENTS
// =================================================================================

type clientRepo struct{ s *Store }

func (r clientRepo) Create(ctx context.Context, c repo.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[c.ID]; ok {
		return repo.ErrConflict
	}
	r.s.clients[c.ID] = cloneClient(c)
	return nil
}

func (r clientRepo) Get(ctx context.Context, id string) (*repo.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := cloneClient(c)
	return &out, nil
}

func (r clientRepo) List(ctx context.Context) ([]repo.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]repo.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		out = append(out, cloneClient(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r clientRepo) SetActive(ctx context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return repo.ErrNotFound
	}
	c.IsActive = active
	r.s.clients[id] = c
	return nil
}

func cloneClient(c repo.Client) repo.Client {
	c.RedirectURIs = slices.Clone(c.RedirectURIs)
	c.Scopes = slices.Clone(c.Scopes)
	return c
}

// =================================================================================
// CODES & REFRESH TOKENS
// =================================================================================

type tokenRepo struct{ s *Store }

func (r tokenRepo) CreateCode(ctx context.Context, c repo.AuthorizationCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.codes[c.CodeHash]; ok {
		return repo.ErrConflict
	}
	c.Scopes = slices.Clone(c.Scopes)
	r.s.codes[c.CodeHash] = c
	return nil
}

func (r tokenRepo) GetCode(ctx context.Context, codeHash, clientID string) (*repo.AuthorizationCode, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.codes[codeHash]
	if !ok || c.ClientID != clientID {
		return nil, repo.ErrNotFound
	}
	c.Scopes = slices.Clone(c.Scopes)
	return &c, nil
}

func (r tokenRepo) DeleteCode(ctx context.Context, codeHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.codes[codeHash]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.codes, codeHash)
	return nil
}

func (r tokenRepo) ExchangeCode(ctx context.Context, codeHash, clientID string, rt repo.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.codes[codeHash]
	if !ok || c.ClientID != clientID {
		return repo.ErrNotFound
	}
	if _, dup := r.s.refresh[rt.TokenHash]; dup {
		return repo.ErrConflict
	}
	delete(r.s.codes, codeHash)
	rt.Scopes = slices.Clone(rt.Scopes)
	r.s.refresh[rt.TokenHash] = rt
	return nil
}

func (r tokenRepo) GetRefreshToken(ctx context.Context, tokenHash, clientID string) (*repo.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.refresh[tokenHash]
	if !ok || t.ClientID != clientID {
		return nil, repo.ErrNotFound
	}
	t.Scopes = slices.Clone(t.Scopes)
	return &t, nil
}

var _ repo.Store = (*Store)(nil)
