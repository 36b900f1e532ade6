// Package logger envuelve zap: singleton de proceso, logger por request en el
// contexto y helpers de campos con nombres estables.
package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger.
type Config struct {
	// Env: "dev" (consola, debug) o "prod" (JSON, info).
	Env string
	// Level pisa el nivel del preset cuando no está vacío.
	Level   string
	Service string
	Version string
}

var (
	mu       sync.Mutex
	instance *zap.Logger
)

// Init construye el logger global. Llamadas posteriores lo reemplazan.
func Init(cfg Config) *zap.Logger {
	l := build(cfg)
	mu.Lock()
	instance = l
	mu.Unlock()
	return l
}

// L retorna el logger global; si no se inicializó usa un preset dev.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = build(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Replace instala un logger arbitrario (tests usan zap.NewNop o zaptest).
func Replace(l *zap.Logger) {
	mu.Lock()
	instance = l
	mu.Unlock()
}

// Sync flushea buffers pendientes.
func Sync() error {
	mu.Lock()
	l := instance
	mu.Unlock()
	if l == nil {
		return nil
	}
	return l.Sync()
}

func build(cfg Config) *zap.Logger {
	prod := strings.EqualFold(strings.TrimSpace(cfg.Env), "prod")

	var zcfg zap.Config
	if prod {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level, prod))

	opts := []zap.Option{zap.AddCaller()}
	if prod {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	l, err := zcfg.Build(opts...)
	if err != nil {
		l = zap.NewExample()
	}
	if cfg.Service != "" {
		l = l.With(zap.String("service", cfg.Service))
	}
	if cfg.Version != "" {
		l = l.With(zap.String("version", cfg.Version))
	}
	return l
}

func parseLevel(lvl string, prod bool) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	if prod {
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}
