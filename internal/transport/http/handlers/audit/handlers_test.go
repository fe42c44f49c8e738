package audithandler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/platform/requestctx"
)

func request(t *testing.T, svc *audit.Service, role auth.Role, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	session, err := auth.NewSession("sid", auth.User{Name: "A", Email: "admin@company.com", Role: role}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	req = req.WithContext(requestctx.WithSession(context.Background(), session))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func seeded(t *testing.T) *audit.Service {
	svc := audit.New(audit.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, svc.Record(ctx, "john.smith@company.com", audit.ActionLogin, audit.EntitySession, "s1", "r1", "10.0.0.1", nil, nil))
	require.NoError(t, svc.Record(ctx, "sarah.johnson@company.com", audit.ActionLeaveApprove, audit.EntityLeave, "l1", "r2", "10.0.0.2", nil, map[string]string{"status": "approved"}))
	return svc
}

func TestListEventsAdminOnly(t *testing.T) {
	svc := seeded(t)

	rec := request(t, svc, auth.RoleHR, "/audit/events")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = request(t, svc, auth.RoleAdmin, "/audit/events?entityType=leave&includeDetails=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	var env struct {
		Data []audit.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "l1", env.Data[0].EntityID)
	assert.JSONEq(t, `{"status":"approved"}`, string(env.Data[0].After))
}

func TestExportEvents(t *testing.T) {
	rec := request(t, seeded(t), auth.RoleAdmin, "/audit/events/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "actor", records[0][1])
	assert.Equal(t, audit.ActionLeaveApprove, records[1][2])
}
