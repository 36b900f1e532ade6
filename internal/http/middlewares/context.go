package middlewares

import "context"

type ctxKey string

const ctxRequestIDKey ctxKey = "request_id"

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, rid)
}

// GetRequestID devuelve "" fuera de WithRequestID.
func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(ctxRequestIDKey).(string)
	return rid
}
