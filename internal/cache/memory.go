package cache

import (
	"context"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryClient struct {
	c      *gocache.Cache
	prefix string
}

// NewMemory crea un cache in-process; cleanup es el intervalo de purga.
func NewMemory(prefix string, cleanup time.Duration) Client {
	return &memoryClient{c: gocache.New(gocache.NoExpiration, cleanup), prefix: prefix}
}

func (m *memoryClient) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v.([]byte)), nil
}

func (m *memoryClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(prefixed(m.prefix, key), slices.Clone(value), ttl)
	return nil
}

func (m *memoryClient) Delete(_ context.Context, key string) error {
	m.c.Delete(prefixed(m.prefix, key))
	return nil
}

func (m *memoryClient) Ping(ctx context.Context) error { return ctx.Err() }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}
