package rate

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es la versión in-process para un solo nodo.
type MemoryLimiter struct {
	c      *gocache.Cache
	Prefix string
	Max    int64
	Window time.Duration
	Now    func() time.Time
}

func NewMemoryLimiter(prefix string, max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
		Now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	now := l.Now().UTC()
	winStart := now.Truncate(l.Window)
	k := windowKey(l.Prefix, key, winStart)

	// Add falla si la key existe; eso es lo esperado tras el primer hit.
	_ = l.c.Add(k, int64(0), l.Window)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		return Result{}, fmt.Errorf("rate: memory: %w", err)
	}
	return result(hits, l.Max, winStart.Add(l.Window).Sub(now)), nil
}
