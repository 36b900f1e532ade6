package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/idryos/idryos-auth/internal/security/password"
)

type authService struct {
	deps Deps

	// hash contra el que se verifica cuando el email no existe, para que
	// "usuario inexistente" y "password incorrecta" tarden lo mismo.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService crea el service. Now, NewID y Policy tienen defaults.
func NewAuthService(deps Deps) AuthService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Policy.MinLength == 0 {
		deps.Policy = password.DefaultPolicy
	}
	return &authService{deps: deps}
}

func (s *authService) now() time.Time { return s.deps.Now().UTC() }

func (s *authService) expiresIn() int64 {
	return int64(s.deps.Issuer.AccessTTL / time.Second)
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.deps.Hasher.Hash("idryos-dummy-password")
	})
	return s.dummyHash
}
