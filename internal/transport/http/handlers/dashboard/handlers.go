package dashboardhandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/dashboard"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
)

type Handler struct {
	Service *dashboard.Service
}

func NewHandler(service *dashboard.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireSession).Get("/dashboard", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	summary, err := h.Service.Summary(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		slog.Error("dashboard summary failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", requestID)
		return
	}
	api.Success(w, summary, requestID)
}
