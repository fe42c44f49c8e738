package auth

import (
	"fmt"
	"strings"
)

// Role is one of the three access levels. The zero value means "no role".
type Role uint8

const (
	RoleNone Role = iota
	RoleEmployee
	RoleHR
	RoleAdmin
)

// Roles lists every assignable role in menu order.
var Roles = []Role{RoleEmployee, RoleHR, RoleAdmin}

func (r Role) String() string {
	switch r {
	case RoleEmployee:
		return "employee"
	case RoleHR:
		return "hr"
	case RoleAdmin:
		return "admin"
	default:
		return ""
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleHR, RoleAdmin:
		return true
	default:
		return false
	}
}

// DashboardPath is where a session holding this role lands.
func (r Role) DashboardPath() string {
	return "/dashboard/" + r.String()
}

// ParseRole accepts the lower-case role names, ignoring case and surrounding space.
func ParseRole(value string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "employee":
		return RoleEmployee, true
	case "hr":
		return RoleHR, true
	case "admin":
		return RoleAdmin, true
	default:
		return RoleNone, false
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = RoleNone
		return nil
	}
	parsed, ok := ParseRole(string(text))
	if !ok {
		return fmt.Errorf("unknown role %q", string(text))
	}
	*r = parsed
	return nil
}
