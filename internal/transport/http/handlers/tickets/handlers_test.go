package ticketshandler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/domain/auth"
	"ems/internal/domain/tickets"
	"ems/internal/platform/requestctx"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func routerFor(t *testing.T, svc *tickets.Service, user auth.User) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			session, err := auth.NewSession("sid-"+user.Email, user, time.Now().Add(time.Hour))
			require.NoError(t, err)
			next.ServeHTTP(w, req.WithContext(requestctx.WithSession(req.Context(), session)))
		})
	})
	NewHandler(svc, nil).RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestTicketFlow(t *testing.T) {
	svc := tickets.NewService(tickets.NewMemoryStore())
	employee := routerFor(t, svc, auth.User{Name: "John Smith", Email: "john.smith@company.com", Role: auth.RoleEmployee})
	admin := routerFor(t, svc, auth.User{Name: "Mike Wilson", Email: "mike.wilson@company.com", Role: auth.RoleAdmin})

	code, env := do(t, employee, http.MethodPost, "/tickets", `{"title":"Laptop screen flickering","category":"equipment","urgency":"high"}`)
	require.Equal(t, http.StatusCreated, code)
	var ticket tickets.Ticket
	require.NoError(t, json.Unmarshal(env.Data, &ticket))
	assert.Equal(t, tickets.StatusPending, ticket.Status)

	code, env = do(t, employee, http.MethodPost, "/tickets/"+ticket.ID+"/review", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", env.Error.Code)

	code, _ = do(t, admin, http.MethodPost, "/tickets/"+ticket.ID+"/review", "")
	require.Equal(t, http.StatusOK, code)

	code, env = do(t, admin, http.MethodPost, "/tickets/"+ticket.ID+"/resolve", `{"response":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Error.Code)

	code, env = do(t, admin, http.MethodPost, "/tickets/"+ticket.ID+"/resolve", `{"response":"Replacement issued"}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &ticket))
	assert.Equal(t, tickets.StatusResolved, ticket.Status)
	assert.NotNil(t, ticket.ResolvedAt)

	code, env = do(t, admin, http.MethodPost, "/tickets/"+ticket.ID+"/review", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "invalid_state", env.Error.Code)

	code, env = do(t, employee, http.MethodGet, "/tickets/stats", "")
	require.Equal(t, http.StatusOK, code)
	var stats tickets.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Resolved)

	code, env = do(t, admin, http.MethodGet, "/tickets", "")
	require.Equal(t, http.StatusOK, code)
	var own []tickets.Ticket
	require.NoError(t, json.Unmarshal(env.Data, &own))
	assert.Empty(t, own)

	code, _ = do(t, admin, http.MethodGet, "/tickets/all", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, employee, http.MethodGet, "/tickets/all", "")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestTicketCreateValidation(t *testing.T) {
	employee := routerFor(t, tickets.NewService(tickets.NewMemoryStore()), auth.User{Name: "J", Email: "j@company.com", Role: auth.RoleEmployee})
	code, env := do(t, employee, http.MethodPost, "/tickets", `{"title":"","urgency":"whenever"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", env.Error.Code)
}
