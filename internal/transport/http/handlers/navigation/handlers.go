package navigationhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/auth"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/navigation", func(r chi.Router) {
		r.With(middleware.RequireSession).Get("/menu", h.handleMenu)
		r.Get("/authorize", h.handleAuthorize)
		r.Get("/routes", h.handleRoutes)
	})
}

type menuResponse struct {
	Role    auth.Role              `json:"role"`
	Entries []auth.NavigationEntry `json:"entries"`
}

func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetSession(r.Context()).Role()
	api.Success(w, menuResponse{Role: role, Entries: auth.MenuFor(role)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	path := r.URL.Query().Get("path")
	if path == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "path query parameter required", requestID)
		return
	}
	decision, ok := auth.AuthorizePath(middleware.GetSession(r.Context()), path)
	if !ok {
		api.Fail(w, http.StatusNotFound, "unknown_route", "path is not a known page route", requestID)
		return
	}
	api.Success(w, decision, requestID)
}

func (h *Handler) handleRoutes(w http.ResponseWriter, r *http.Request) {
	api.Success(w, auth.PageRoutes(), middleware.GetRequestID(r.Context()))
}

// PageGuard applies the route table to browser navigation. Known page routes
// the session may not reach answer 303 See Other to the guard's target;
// everything else falls through to next.
func PageGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		decision, ok := auth.AuthorizePath(middleware.GetSession(r.Context()), r.URL.Path)
		if ok && !decision.Allow {
			http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
