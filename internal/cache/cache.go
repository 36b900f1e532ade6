// Package cache provee un key/value con TTL con backends memory (go-cache) y
// redis. Se usa para cachear lookups de clientes OAuth.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache: key not found")

type Client interface {
	// Get retorna ErrNotFound si la key no existe o expiró.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set con ttl 0 no expira.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + k
}
