package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/idryos/idryos-auth/internal/cache"
	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/idryos/idryos-auth/internal/observability/logger"
)

// DefaultClientTTL es cuánto vive un cliente en cache.
const DefaultClientTTL = time.Minute

type cachedClients struct {
	repo  repo.ClientRepository
	cache cache.Client
	ttl   time.Duration
	sf    singleflight.Group
}

// NewCachedClients envuelve el repositorio con cache read-through. Los misses
// concurrentes para el mismo id comparten una sola lectura al store.
// Un cliente inexistente no se cachea.
func NewCachedClients(r repo.ClientRepository, c cache.Client, ttl time.Duration) ClientLookup {
	if ttl <= 0 {
		ttl = DefaultClientTTL
	}
	return &cachedClients{repo: r, cache: c, ttl: ttl}
}

func clientKey(id string) string { return "client:" + id }

// EvictClient borra el cliente del cache compartido; la próxima lectura va al
// store. Lo usa la CLI tras modificar un cliente.
func EvictClient(ctx context.Context, c cache.Client, clientID string) error {
	return c.Delete(ctx, clientKey(clientID))
}

func (c *cachedClients) Get(ctx context.Context, clientID string) (*repo.Client, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("oauth.clients"))

	if raw, err := c.cache.Get(ctx, clientKey(clientID)); err == nil {
		var cl repo.Client
		if err := json.Unmarshal(raw, &cl); err == nil {
			return &cl, nil
		}
		log.Warn("corrupt cached client", logger.ClientID(clientID))
	} else if !cache.IsNotFound(err) {
		// cache caída: seguimos contra el store
		log.Warn("client cache get failed", logger.ClientID(clientID), logger.Err(err))
	}

	v, err, _ := c.sf.Do(clientID, func() (any, error) {
		cl, err := c.repo.Get(ctx, clientID)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(cl); err == nil {
			if err := c.cache.Set(ctx, clientKey(clientID), raw, c.ttl); err != nil {
				log.Warn("client cache set failed", logger.ClientID(clientID), logger.Err(err))
			}
		}
		return cl, nil
	})
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	cl := *v.(*repo.Client)
	return &cl, nil
}
