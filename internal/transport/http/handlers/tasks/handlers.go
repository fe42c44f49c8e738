package taskshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ems/internal/domain/tasks"
	"ems/internal/transport/http/api"
	"ems/internal/transport/http/middleware"
	"ems/internal/transport/http/shared"
)

type Handler struct {
	Service *tasks.Service
}

func NewHandler(service *tasks.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/stats", h.handleStats)
		r.Get("/{taskID}", h.handleGet)
		r.Put("/{taskID}", h.handleUpdate)
		r.Patch("/{taskID}/status", h.handleSetStatus)
		r.Delete("/{taskID}", h.handleDelete)
	})
}

type taskPayload struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	DueDate     string `json:"dueDate" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      string `json:"status" validate:"omitempty,oneof=todo in-progress completed"`
}

type statusPayload struct {
	Status string `json:"status" validate:"required,oneof=todo in-progress completed"`
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (tasks.Input, bool) {
	requestID := middleware.GetRequestID(r.Context())
	var payload taskPayload
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return tasks.Input{}, false
	}
	v := shared.NewValidator()
	v.Struct(payload)
	due := v.DateIfSet("dueDate", payload.DueDate)
	if v.Reject(w, requestID) {
		return tasks.Input{}, false
	}
	return tasks.Input{
		Title:       payload.Title,
		Description: payload.Description,
		DueDate:     due,
		Priority:    payload.Priority,
		Status:      payload.Status,
	}, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	page := shared.ParsePagination(r, v, 50, 200)
	if v.Reject(w, requestID) {
		return
	}
	owner := middleware.GetSession(r.Context()).Email()
	list, err := h.Service.List(r.Context(), owner, r.URL.Query().Get("status"), page.Limit, page.Offset)
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
	task, err := h.Service.Create(r.Context(), middleware.GetSession(r.Context()).Email(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Created(w, task, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	task, err := h.Service.Get(r.Context(), middleware.GetSession(r.Context()).Email(), chi.URLParam(r, "taskID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, task, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	task, err := h.Service.Update(r.Context(), middleware.GetSession(r.Context()).Email(), chi.URLParam(r, "taskID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, task, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload statusPayload
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}
	task, err := h.Service.SetStatus(r.Context(), middleware.GetSession(r.Context()).Email(), chi.URLParam(r, "taskID"), payload.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, task, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), middleware.GetSession(r.Context()).Email(), chi.URLParam(r, "taskID")); err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context(), middleware.GetSession(r.Context()).Email())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "task not found", requestID)
	case errors.Is(err, tasks.ErrInvalidStatus),
		errors.Is(err, tasks.ErrInvalidPriority),
		errors.Is(err, tasks.ErrTitleRequired),
		errors.Is(err, tasks.ErrDueDateRequired):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
	default:
		slog.Error("task request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "tasks_failed", "task operation failed", requestID)
	}
}
