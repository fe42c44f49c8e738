package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryMenuPathIsGuardedForItsRole(t *testing.T) {
	for _, role := range Roles {
		session := sessionFor(t, role)
		for _, entry := range MenuFor(role) {
			decision, ok := AuthorizePath(session, entry.Path)
			require.True(t, ok, "path %s missing from route table", entry.Path)
			assert.True(t, decision.Allow, "role %s should reach %s", role, entry.Path)
		}
	}
}

func TestAuthorizePath(t *testing.T) {
	employee := sessionFor(t, RoleEmployee)
	hr := sessionFor(t, RoleHR)

	tests := []struct {
		name    string
		session Session
		path    string
		want    Decision
	}{
		{"anonymous root", Anonymous, "/", RedirectTo("/login")},
		{"anonymous login", Anonymous, "/login", Allowed},
		{"authenticated login goes to dashboard", hr, "/login", RedirectTo("/dashboard/hr")},
		{"own dashboard", employee, "/dashboard/employee", Allowed},
		{"foreign dashboard", employee, "/dashboard/admin", RedirectTo("/dashboard/employee")},
		{"hr page as employee", employee, "/leave-management", RedirectTo("/dashboard/employee")},
		{"trailing slash", hr, "/complaints/", Allowed},
		{"query string", employee, "/tasks?status=todo", Allowed},
		{"anonymous admin page", Anonymous, "/settings", RedirectTo("/login")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := AuthorizePath(tc.session, tc.path)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAuthorizePathUnknown(t *testing.T) {
	_, ok := AuthorizePath(Anonymous, "/nowhere")
	assert.False(t, ok)
}

func TestPageRoutesSorted(t *testing.T) {
	routes := PageRoutes()
	require.NotEmpty(t, routes)
	for i := 1; i < len(routes); i++ {
		assert.Less(t, routes[i-1].Path, routes[i].Path)
	}
}
