package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// =================================================================================
// DOMINIO
// =================================================================================

func UserID(v string) zap.Field { return zap.String("user_id", v) }
func ClientID(v string) zap.Field { return zap.String("client_id", v) }
func GrantType(v string) zap.Field { return zap.String("grant_type", v) }

// DID loguea el identificador completo; no contiene material privado.
func DID(v string) zap.Field { return zap.String("did", v) }

// =================================================================================
// SISTEMA
// =================================================================================

// Layer: controller, service, store.
func Layer(v string) zap.Field { return zap.String("layer", v) }
func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field { return zap.String("op", v) }
func Err(err error) zap.Field { return zap.Error(err) }

func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
