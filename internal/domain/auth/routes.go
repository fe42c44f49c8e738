package auth

import (
	"sort"
	"strings"
)

// PageRoute is an entry in the client route table.
type PageRoute struct {
	Path     string `json:"path"`
	Public   bool   `json:"public"`
	Required Role   `json:"requiredRole,omitempty"`
}

var pageRoutes = buildPageRoutes()

func buildPageRoutes() map[string]PageRoute {
	routes := map[string]PageRoute{
		LoginPath:    {Path: LoginPath, Public: true},
		"/":          {Path: "/"},
		"/dashboard": {Path: "/dashboard"},
	}
	for _, role := range Roles {
		path := role.DashboardPath()
		routes[path] = PageRoute{Path: path, Required: role}
		for _, entry := range MenuFor(role) {
			if entry.Path == dashboardEntry.Path {
				continue
			}
			routes[entry.Path] = PageRoute{Path: entry.Path, Required: role}
		}
	}
	return routes
}

// PageRoutes lists the route table sorted by path.
func PageRoutes() []PageRoute {
	out := make([]PageRoute, 0, len(pageRoutes))
	for _, route := range pageRoutes {
		out = append(out, route)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func RouteFor(path string) (PageRoute, bool) {
	route, ok := pageRoutes[normalizePath(path)]
	return route, ok
}

// AuthorizePath runs the guard for a page path. ok is false when the path is
// not in the route table. The login page sends authenticated sessions on to
// their dashboard.
func AuthorizePath(session Session, path string) (decision Decision, ok bool) {
	route, ok := RouteFor(path)
	if !ok {
		return Decision{}, false
	}
	if route.Public {
		if route.Path == LoginPath && session.IsAuthenticated() {
			return RedirectTo(session.Role().DashboardPath()), true
		}
		return Allowed, true
	}
	return Authorize(session, route.Required), true
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
