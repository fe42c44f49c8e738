package auth

const LoginPath = "/login"

// Decision is the guard's verdict: either Allow, or a redirect target.
type Decision struct {
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

var Allowed = Decision{Allow: true}

func RedirectTo(path string) Decision {
	return Decision{RedirectTo: path}
}

// Authorize decides whether session may reach a route requiring the given
// role. RoleNone means the route only needs authentication. Role matching is
// exact; admin is not implicitly allowed on hr routes.
func Authorize(session Session, required Role) Decision {
	if required == RoleNone {
		return AuthorizeAny(session)
	}
	return AuthorizeAny(session, required)
}

// AuthorizeAny is Authorize for routes shared by several roles.
func AuthorizeAny(session Session, allowed ...Role) Decision {
	if !session.IsAuthenticated() {
		return RedirectTo(LoginPath)
	}
	if len(allowed) == 0 {
		return Allowed
	}
	role := session.Role()
	for _, candidate := range allowed {
		if candidate == role {
			return Allowed
		}
	}
	return RedirectTo(role.DashboardPath())
}
