package authhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/platform/metrics"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Service      *auth.Service
	Metrics      *metrics.Collector
	Audit        *audit.Service
	CookieSecure bool
}

func NewHandler(service *auth.Service, collector *metrics.Collector, auditSvc *audit.Service, cookieSecure bool) *Handler {
	return &Handler{Service: service, Metrics: collector, Audit: auditSvc, CookieSecure: cookieSecure}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.Post("/logout", h.HandleLogout)
		r.Get("/session", h.HandleSession)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token      string       `json:"token"`
	Session    auth.Session `json:"session"`
	RedirectTo string       `json:"redirectTo"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	result, err := h.Service.Login(r.Context(), auth.LoginRequest{
		Email:    payload.Email,
		Password: payload.Password,
		Role:     payload.Role,
	})
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrMissingFields):
		api.Fail(w, http.StatusBadRequest, "missing_fields", "Please fill in all fields", requestID)
		return
	case errors.Is(err, auth.ErrUnknownRole):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "role", Reason: "must be one of: employee, hr, admin"}})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.Metrics.RecordLogin(false)
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	default:
		slog.Error("login failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to start session", requestID)
		return
	}

	h.Metrics.RecordLogin(true)
	shared.Audit(r, h.Audit, result.Session.Email(), audit.ActionLogin, audit.EntitySession, result.Session.ID(), nil, nil)
	http.SetCookie(w, h.sessionCookie(result.Token, result.Session.ExpiresAt()))
	api.Success(w, loginResponse{
		Token:      result.Token,
		Session:    result.Session,
		RedirectTo: result.Session.Role().DashboardPath(),
	}, requestID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	session := middleware.GetSession(r.Context())
	if err := h.Service.Logout(r.Context(), session); err != nil {
		slog.Warn("logout session revoke failed", "err", err, "requestId", requestID)
	} else if session.IsAuthenticated() {
		shared.Audit(r, h.Audit, session.Email(), audit.ActionLogout, audit.EntitySession, session.ID(), nil, nil)
	}
	cookie := h.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	api.Success(w, map[string]string{"status": "logged_out", "redirectTo": auth.LoginPath}, requestID)
}

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	api.Success(w, middleware.GetSession(r.Context()), middleware.GetRequestID(r.Context()))
}

func (h *Handler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
