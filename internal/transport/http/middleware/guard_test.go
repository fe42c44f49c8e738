package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/domain/auth"
)

type deniedEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Details struct {
			RedirectTo string `json:"redirectTo"`
		} `json:"details"`
	} `json:"error"`
}

func serveGuarded(t *testing.T, mw func(http.Handler) http.Handler, r *http.Request) (*httptest.ResponseRecorder, deniedEnvelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(noContent)).ServeHTTP(rec, r)
	var env deniedEnvelope
	if rec.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestRequireRoleUnauthenticated(t *testing.T) {
	rec, env := serveGuarded(t, RequireRole(auth.RoleAdmin), httptest.NewRequest(http.MethodGet, "/api/v1/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", env.Error.Code)
	assert.Equal(t, "/login", env.Error.Details.RedirectTo)
}

func TestRequireRoleMismatchRedirectsToOwnDashboard(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/x", nil).WithContext(sessionContext(t, "sarah.johnson@company.com", auth.RoleHR))
	rec, env := serveGuarded(t, RequireRole(auth.RoleAdmin), req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", env.Error.Code)
	assert.Equal(t, "/dashboard/hr", env.Error.Details.RedirectTo)
}

func TestRequireRoleMatch(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/x", nil).WithContext(sessionContext(t, "admin@company.com", auth.RoleAdmin))
	rec, _ := serveGuarded(t, RequireRole(auth.RoleAdmin), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAnyRole(t *testing.T) {
	mw := RequireAnyRole(auth.RoleHR, auth.RoleAdmin)
	for _, role := range []auth.Role{auth.RoleHR, auth.RoleAdmin} {
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(sessionContext(t, "x@company.com", role))
		rec, _ := serveGuarded(t, mw, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, role.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(sessionContext(t, "john.smith@company.com", auth.RoleEmployee))
	rec, env := serveGuarded(t, mw, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/dashboard/employee", env.Error.Details.RedirectTo)
}

func TestRequireSession(t *testing.T) {
	rec, _ := serveGuarded(t, RequireSession, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for _, role := range auth.Roles {
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(sessionContext(t, "x@company.com", role))
		rec, _ := serveGuarded(t, RequireSession, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, role.String())
	}
}
