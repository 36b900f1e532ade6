// Package did expone la creación y resolución de DIDs sobre internal/did.
package did

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	diddoc "github.com/idryos/idryos-auth/internal/did"
	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	dto "github.com/idryos/idryos-auth/internal/http/dto/did"
	"github.com/idryos/idryos-auth/internal/observability/logger"
)

// DIDService define /did/create y /did/resolve.
type DIDService interface {
	Create(ctx context.Context, in dto.CreateRequest) (*dto.CreateResponse, error)
	Resolve(ctx context.Context, id string) (*diddoc.Document, error)
}

// Deps contiene las dependencias del service.
type Deps struct {
	Users     repo.UserRepository
	Generator *diddoc.Generator
	Now       func() time.Time
}

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUnsupportedMethod = diddoc.ErrUnsupportedMethod
	ErrNotFound          = diddoc.ErrNotFound
)

type didService struct {
	deps Deps
}

func NewDIDService(deps Deps) DIDService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &didService{deps: deps}
}

// Create genera claves y documento, y liga el DID al usuario reemplazando el
// anterior si existía.
func (s *didService) Create(ctx context.Context, in dto.CreateRequest) (*dto.CreateResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("did.create"),
		logger.Op("Create"),
	)

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrUserNotFound
	}
	if _, err := s.deps.Users.GetByID(ctx, userID); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	method, err := diddoc.ParseMethod(in.Method)
	if err != nil {
		return nil, err
	}
	doc, err := s.deps.Generator.Create(method, userID)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Users.BindDID(ctx, userID, doc.ID, s.deps.Now().UTC()); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("bind did: %w", err)
	}

	log.Info("did created", logger.UserID(userID), logger.DID(doc.ID))
	return &dto.CreateResponse{DID: doc.ID, Document: doc}, nil
}

// Resolve no toca storage: did:key se decodifica del propio identificador.
func (s *didService) Resolve(ctx context.Context, id string) (*diddoc.Document, error) {
	doc, err := s.deps.Generator.Resolve(strings.TrimSpace(id))
	if err != nil {
		logger.From(ctx).Debug("did not resolved", logger.DID(id), logger.Err(err))
		return nil, err
	}
	return &doc, nil
}
