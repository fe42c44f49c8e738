package auth

import (
	"context"
	"time"
)

type UserRecord struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

func (u UserRecord) User() User {
	return User{Name: u.Name, Email: u.Email, Role: u.Role}
}

type SessionRecord struct {
	ID        string     `json:"id"`
	User      User       `json:"user"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// Live reports whether the record may still back a session at now.
func (r SessionRecord) Live(now time.Time) bool {
	return r.RevokedAt == nil && now.Before(r.ExpiresAt)
}

type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (UserRecord, error)
	CreateUser(ctx context.Context, user UserRecord) error
	CountUsersByRole(ctx context.Context) (map[Role]int, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, record SessionRecord) error
	GetSession(ctx context.Context, id string) (SessionRecord, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
	PurgeSessions(ctx context.Context, now time.Time) (int64, error)
}
