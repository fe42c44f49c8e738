package middleware

import (
	"net/http"

	"ems/internal/domain/auth"
	"ems/internal/transport/http/api"
)

// RequireSession admits any authenticated session.
func RequireSession(next http.Handler) http.Handler {
	return guard(func(s auth.Session) auth.Decision {
		return auth.Authorize(s, auth.RoleNone)
	})(next)
}

// RequireRole admits sessions whose role equals role exactly.
func RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return guard(func(s auth.Session) auth.Decision {
		return auth.Authorize(s, role)
	})
}

func RequireAnyRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return guard(func(s auth.Session) auth.Decision {
		return auth.AuthorizeAny(s, roles...)
	})
}

func guard(decide func(auth.Session) auth.Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSession(r.Context())
			decision := decide(session)
			if decision.Allow {
				next.ServeHTTP(w, r)
				return
			}
			WriteDenied(w, r, session, decision)
		})
	}
}

// WriteDenied renders a guard refusal as a 401 or 403 envelope carrying the
// path the client should navigate to.
func WriteDenied(w http.ResponseWriter, r *http.Request, session auth.Session, decision auth.Decision) {
	details := map[string]any{"redirectTo": decision.RedirectTo}
	if !session.IsAuthenticated() {
		api.FailWithDetails(w, http.StatusUnauthorized, "unauthenticated", "authentication required", details, GetRequestID(r.Context()))
		return
	}
	api.FailWithDetails(w, http.StatusForbidden, "forbidden", "role not permitted", details, GetRequestID(r.Context()))
}
