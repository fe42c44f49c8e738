package middleware

import (
	"context"
	"net/http"
	"strings"

	"ems/internal/domain/auth"
	"ems/internal/platform/requestctx"
)

const SessionCookieName = "ems_session"

type SessionResolver interface {
	Resolve(ctx context.Context, token string) auth.Session
}

// Auth attaches the caller's session to the request context. It never
// rejects a request; guards decide what an anonymous session may reach.
func Auth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := auth.Anonymous
			if token := TokenFromRequest(r); token != "" {
				session = resolver.Resolve(r.Context(), token)
			}
			ctx := requestctx.WithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest prefers a bearer token over the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "bearer") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func GetSession(ctx context.Context) auth.Session {
	return requestctx.GetSession(ctx)
}
