package auth

import (
	"encoding/json"
	"time"
)

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the immutable view of who is making a request. The zero value
// is the unauthenticated session; an authenticated session always carries a
// valid role.
type Session struct {
	id        string
	user      User
	expiresAt time.Time
}

// Anonymous is the unauthenticated session.
var Anonymous = Session{}

// NewSession builds an authenticated session. It fails when the user has no
// valid role, so a role can never exist without authentication.
func NewSession(id string, user User, expiresAt time.Time) (Session, error) {
	if !user.Role.Valid() {
		return Anonymous, ErrUnknownRole
	}
	if id == "" {
		return Anonymous, ErrSessionNotFound
	}
	return Session{id: id, user: user, expiresAt: expiresAt}, nil
}

func (s Session) IsAuthenticated() bool {
	return s.id != "" && s.user.Role.Valid()
}

// User returns the session's user and whether the session is authenticated.
func (s Session) User() (User, bool) {
	if !s.IsAuthenticated() {
		return User{}, false
	}
	return s.user, true
}

// Role returns RoleNone for unauthenticated sessions.
func (s Session) Role() Role {
	if !s.IsAuthenticated() {
		return RoleNone
	}
	return s.user.Role
}

func (s Session) Email() string {
	if !s.IsAuthenticated() {
		return ""
	}
	return s.user.Email
}

func (s Session) ID() string {
	return s.id
}

func (s Session) ExpiresAt() time.Time {
	return s.expiresAt
}

type sessionJSON struct {
	IsAuthenticated bool       `json:"isAuthenticated"`
	User            *User      `json:"user,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
}

func (s Session) MarshalJSON() ([]byte, error) {
	out := sessionJSON{IsAuthenticated: s.IsAuthenticated()}
	if user, ok := s.User(); ok {
		out.User = &user
		if !s.expiresAt.IsZero() {
			expires := s.expiresAt.UTC()
			out.ExpiresAt = &expires
		}
	}
	return json.Marshal(out)
}
