package ticketshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/tickets"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Service *tickets.Service
	Audit   *audit.Service
}

func NewHandler(service *tickets.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	reviewer := middleware.RequireAnyRole(auth.RoleHR, auth.RoleAdmin)
	r.Route("/tickets", func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/", h.handleListOwn)
		r.Post("/", h.handleCreate)
		r.Get("/stats", h.handleStats)
		r.With(reviewer).Get("/all", h.handleListAll)
		r.Get("/{ticketID}", h.handleGet)
		r.With(reviewer).Post("/{ticketID}/review", h.handleReview)
		r.With(reviewer).Post("/{ticketID}/resolve", h.handleResolve)
	})
}

type ticketPayload struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
	Category    string `json:"category" validate:"omitempty,oneof=technical hr equipment workplace other"`
	Urgency     string `json:"urgency" validate:"omitempty,oneof=low medium high critical"`
}

type resolvePayload struct {
	Response string `json:"response" validate:"required,max=4000"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, owner string) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	page := shared.ParsePagination(r, v, 50, 200)
	if v.Reject(w, requestID) {
		return
	}
	status := r.URL.Query().Get("status")
	var (
		list []tickets.Ticket
		err  error
	)
	if owner == "" {
		list, err = h.Service.ListAll(r.Context(), status, page.Limit, page.Offset)
	} else {
		list, err = h.Service.List(r.Context(), owner, status, page.Limit, page.Offset)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleListOwn(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, middleware.GetSession(r.Context()).Email())
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload ticketPayload
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}
	actor := middleware.GetSession(r.Context()).Email()
	ticket, err := h.Service.Create(r.Context(), actor, tickets.Input{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Urgency:     payload.Urgency,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, actor, audit.ActionTicketCreate, audit.EntityTicket, ticket.ID, nil, ticket)
	api.Created(w, ticket, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Service.Get(r.Context(), middleware.GetSession(r.Context()).Email(), chi.URLParam(r, "ticketID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, ticket, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context(), middleware.GetSession(r.Context()).Email())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Service.Review(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, middleware.GetSession(r.Context()).Email(), audit.ActionTicketReview, audit.EntityTicket, ticket.ID, nil, ticket)
	api.Success(w, ticket, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload resolvePayload
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}
	ticket, err := h.Service.Resolve(r.Context(), chi.URLParam(r, "ticketID"), payload.Response)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, middleware.GetSession(r.Context()).Email(), audit.ActionTicketResolve, audit.EntityTicket, ticket.ID, nil, ticket)
	api.Success(w, ticket, requestID)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, tickets.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "ticket not found", requestID)
	case errors.Is(err, tickets.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "ticket cannot move to that status", requestID)
	case errors.Is(err, tickets.ErrInvalidCategory),
		errors.Is(err, tickets.ErrInvalidUrgency),
		errors.Is(err, tickets.ErrInvalidStatus),
		errors.Is(err, tickets.ErrTitleRequired),
		errors.Is(err, tickets.ErrResponseRequired):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
	default:
		slog.Error("ticket request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "tickets_failed", "ticket operation failed", requestID)
	}
}
