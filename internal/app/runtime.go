package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/idryos/idryos-auth/internal/cache"
	"github.com/idryos/idryos-auth/internal/config"
	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/idryos/idryos-auth/internal/http/services/health"
	"github.com/idryos/idryos-auth/internal/observability/logger"
	"github.com/idryos/idryos-auth/internal/rate"
	"github.com/idryos/idryos-auth/internal/store"
)

// Runtime son los recursos con ciclo de vida propio.
type Runtime struct {
	Store   repo.Store
	Redis   *redis.Client // nil sin REDIS_ADDR
	Cache   cache.Client
	Limiter rate.Limiter
}

// Open abre el store (migrando) y, si hay REDIS_ADDR, redis para cache y
// rate limit. Sin redis ambos usan memoria del proceso.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	log := logger.From(ctx).With(logger.Layer("app"), logger.Op("Open"))

	st, err := store.Open(ctx, cfg.Storage.DSN, store.Options{MaxConns: cfg.Storage.MaxConns})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt := &Runtime{Store: st}

	if cfg.Cache.RedisAddr != "" {
		rdb, err := cache.DialRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("open redis: %w", err)
		}
		rt.Redis = rdb
		rt.Cache = cache.NewRedis(rdb, cfg.Cache.Prefix)
		log.Info("redis connected", logger.String("addr", cfg.Cache.RedisAddr))
	} else {
		rt.Cache = cache.NewMemory(cfg.Cache.Prefix, 5*time.Minute)
	}

	if cfg.Rate.LoginMax > 0 {
		prefix := cfg.Cache.Prefix + "rl:login:"
		if rt.Redis != nil {
			rt.Limiter = rate.NewRedisLimiter(rt.Redis, prefix, cfg.Rate.LoginMax, cfg.Rate.LoginWindow)
		} else {
			rt.Limiter = rate.NewMemoryLimiter(prefix, cfg.Rate.LoginMax, cfg.Rate.LoginWindow)
		}
	}
	return rt, nil
}

// Checkers devuelve los pings extra para /health (el store va siempre).
func (rt *Runtime) Checkers() map[string]health.Checker {
	if rt.Redis == nil {
		return nil
	}
	return map[string]health.Checker{"cache": rt.Cache}
}

// Pool expone el pool pgx para métricas; nil con otros backends.
func (rt *Runtime) Pool() *pgxpool.Pool {
	if p, ok := rt.Store.(interface{ Pool() *pgxpool.Pool }); ok {
		return p.Pool()
	}
	return nil
}

// Deps arma app.Deps con los recursos abiertos.
func (rt *Runtime) Deps() Deps {
	return Deps{
		Store:    rt.Store,
		Cache:    rt.Cache,
		Limiter:  rt.Limiter,
		Checkers: rt.Checkers(),
		Pool:     rt.Pool,
	}
}

// Close cierra cache, redis y store, en ese orden.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Cache != nil {
		errs = append(errs, rt.Cache.Close())
	}
	if rt.Redis != nil {
		errs = append(errs, rt.Redis.Close())
	}
	if rt.Store != nil {
		errs = append(errs, rt.Store.Close())
	}
	return errors.Join(errs...)
}
