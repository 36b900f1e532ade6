package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheck_NoCheckers(t *testing.T) {
	resp := NewHealthService(Deps{Version: "1.2.3"}).Check(context.Background())
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "idryos-auth", resp.Service)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Nil(t, resp.Components)
}

func TestCheck_Degraded(t *testing.T) {
	svc := NewHealthService(Deps{
		Version: "dev",
		Checkers: map[string]Checker{
			"store": pingFunc(func(context.Context) error { return nil }),
			"cache": pingFunc(func(context.Context) error { return errors.New("connection refused") }),
		},
	})
	resp := svc.Check(context.Background())
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, map[string]string{"store": "up", "cache": "down"}, resp.Components)
}

func TestCheck_Timeout(t *testing.T) {
	svc := NewHealthService(Deps{
		Timeout: 20 * time.Millisecond,
		Checkers: map[string]Checker{
			"store": pingFunc(func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}),
		},
	})
	resp := svc.Check(context.Background())
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, "down", resp.Components["store"])
}
