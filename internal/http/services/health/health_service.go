// Package health contiene el service de /health.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	dto "github.com/idryos/idryos-auth/internal/http/dto/health"
	"github.com/idryos/idryos-auth/internal/observability/logger"
)

// ServiceName se reporta en cada respuesta.
const ServiceName = "idryos-auth"

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Checker es cualquier componente con Ping (store, cache).
type Checker interface {
	Ping(ctx context.Context) error
}

// Deps contiene las dependencias del service.
type Deps struct {
	Version  string
	Checkers map[string]Checker
	Timeout  time.Duration // por check; default 2s
}

// HealthService ejecuta los checks registrados.
type HealthService interface {
	Check(ctx context.Context) dto.Response
}

type healthService struct {
	deps Deps
}

func NewHealthService(d Deps) HealthService {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	return &healthService{deps: d}
}

// Check corre los pings en paralelo. Cualquier falla deja status=degraded.
func (s *healthService) Check(ctx context.Context) dto.Response {
	resp := dto.Response{Status: StatusHealthy, Service: ServiceName, Version: s.deps.Version}
	if len(s.deps.Checkers) == 0 {
		return resp
	}

	names := make([]string, 0, len(s.deps.Checkers))
	for n := range s.deps.Checkers {
		names = append(names, n)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
			defer cancel()
			if err := s.deps.Checkers[name].Ping(cctx); err != nil {
				logger.From(ctx).Warn("health check failed", logger.Component(name), logger.Err(err))
				results[i] = "down"
				return
			}
			results[i] = "up"
		}()
	}
	wg.Wait()

	resp.Components = make(map[string]string, len(names))
	for i, name := range names {
		resp.Components[name] = results[i]
		if results[i] != "up" {
			resp.Status = StatusDegraded
		}
	}
	return resp
}
