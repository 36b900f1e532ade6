package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/idryos/idryos-auth/internal/app"
	"github.com/idryos/idryos-auth/internal/config"
	"github.com/idryos/idryos-auth/internal/http/services/health"
	"github.com/idryos/idryos-auth/internal/observability/logger"
)

func main() {
	var (
		flagEnvFile = flag.String("env-file", ".env", "archivo .env a cargar (si existe)")
		flagConfig  = flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "YAML de configuración (opcional)")
	)
	flag.Parse()

	// .env es opcional; el entorno del proceso gana.
	_ = godotenv.Load(*flagEnvFile)

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		// sin config no hay logger configurado todavía
		logger.Init(logger.Config{Env: "dev", Service: health.ServiceName}).Fatal("config", logger.Err(err))
	}

	log := logger.Init(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: health.ServiceName,
		Version: cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("service stopped with error", logger.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.ToContext(ctx, log)

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warn("runtime close", logger.Err(err))
		}
	}()

	a, err := app.New(cfg, rt.Deps())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			logger.String("addr", srv.Addr),
			logger.String("env", cfg.App.Env),
			logger.String("issuer", cfg.OAuth.Issuer),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", logger.Duration(cfg.Server.ShutdownTimeout))
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
