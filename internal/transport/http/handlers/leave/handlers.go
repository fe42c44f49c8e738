package leavehandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/leave"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Audit   *audit.Service
}

func NewHandler(service *leave.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	reviewer := middleware.RequireAnyRole(auth.RoleHR, auth.RoleAdmin)
	r.Route("/leaves", func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/", h.handleListOwn)
		r.Post("/", h.handleCreate)
		r.Get("/balance", h.handleBalance)
		r.Get("/summary.pdf", h.handleSummaryPDF)
		r.With(reviewer).Get("/all", h.handleListAll)
		r.Get("/{leaveID}", h.handleGet)
		r.Put("/{leaveID}", h.handleUpdate)
		r.Delete("/{leaveID}", h.handleDelete)
		r.With(reviewer).Post("/{leaveID}/approve", h.handleApprove)
		r.With(reviewer).Post("/{leaveID}/reject", h.handleReject)
	})
}

type leavePayload struct {
	Type     string `json:"type" validate:"required,oneof=vacation sick personal maternity emergency"`
	FromDate string `json:"fromDate" validate:"required"`
	ToDate   string `json:"toDate" validate:"required"`
	Reason   string `json:"reason" validate:"max=1000"`
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (leave.Input, bool) {
	requestID := middleware.GetRequestID(r.Context())
	var payload leavePayload
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return leave.Input{}, false
	}
	v := shared.NewValidator()
	v.Struct(payload)
	from := v.DateIfSet("fromDate", payload.FromDate)
	to := v.DateIfSet("toDate", payload.ToDate)
	v.DateOrder("fromDate", from, "toDate", to)
	v.DateSpan("fromDate", from, "toDate", to, leave.MaxDays)
	if v.Reject(w, requestID) {
		return leave.Input{}, false
	}
	return leave.Input{Type: payload.Type, FromDate: from, ToDate: to, Reason: payload.Reason}, true
}

func (h *Handler) handleListOwn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	page := shared.ParsePagination(r, v, 50, 200)
	if v.Reject(w, requestID) {
		return
	}
	list, err := h.Service.List(r.Context(), middleware.GetSession(r.Context()).Email(), r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	page := shared.ParsePagination(r, v, 50, 200)
	if v.Reject(w, requestID) {
		return
	}
	list, err := h.Service.ListAll(r.Context(), r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	actor := middleware.GetSession(r.Context()).Email()
	l, err := h.Service.Create(r.Context(), actor, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, actor, audit.ActionLeaveApply, audit.EntityLeave, l.ID, nil, l)
	api.Created(w, l, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	l, err := h.Service.Get(r.Context(), middleware.GetSession(r.Context()).Email(), chi.URLParam(r, "leaveID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, l, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	l, err := h.Service.Update(r.Context(), middleware.GetSession(r.Context()).Email(), chi.URLParam(r, "leaveID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, l, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetSession(r.Context()).Email()
	id := chi.URLParam(r, "leaveID")
	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, actor, audit.ActionLeaveWithdraw, audit.EntityLeave, id, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, audit.ActionLeaveApprove, h.Service.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, audit.ActionLeaveReject, h.Service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, action string, decide func(ctx context.Context, id, reviewer string) (leave.Leave, error)) {
	reviewer := middleware.GetSession(r.Context()).Email()
	l, err := decide(r.Context(), chi.URLParam(r, "leaveID"), reviewer)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, reviewer, action, audit.EntityLeave, l.ID, map[string]string{"status": leave.StatusPending}, l)
	api.Success(w, l, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.Service.Balance(r.Context(), middleware.GetSession(r.Context()).Email())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, balance, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetSession(r.Context()).User()
	data, err := h.Service.SummaryPDF(r.Context(), user.Email, user.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=leave-summary.pdf")
	if _, err := w.Write(data); err != nil {
		slog.Warn("leave summary write failed", "err", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave not found", requestID)
	case errors.Is(err, leave.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "only pending leaves can be changed", requestID)
	case errors.Is(err, leave.ErrInvalidType),
		errors.Is(err, leave.ErrInvalidStatus),
		errors.Is(err, leave.ErrInvalidRange),
		errors.Is(err, leave.ErrDatesRequired),
		errors.Is(err, leave.ErrTooLong):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
	default:
		slog.Error("leave request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "leaves_failed", "leave operation failed", requestID)
	}
}
