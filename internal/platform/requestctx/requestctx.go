package requestctx

import (
	"context"

	"ems/internal/domain/auth"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	sessionKey   ctxKey = "session"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithSession(ctx context.Context, session auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSession returns auth.Anonymous when no session was attached.
func GetSession(ctx context.Context) auth.Session {
	if value, ok := ctx.Value(sessionKey).(auth.Session); ok {
		return value
	}
	return auth.Anonymous
}
