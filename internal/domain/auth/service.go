package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Options struct {
	Secret         string
	TTL            time.Duration
	AllowOpenLogin bool
	Now            func() time.Time
}

type Service struct {
	Users    UserStore
	Sessions SessionStore
	opts     Options
}

func NewService(users UserStore, sessions SessionStore, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 8 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{Users: users, Sessions: sessions, opts: opts}
}

type LoginRequest struct {
	Email    string
	Password string
	Role     string
}

type LoginResult struct {
	Token   string
	Session Session
}

// Login checks the credentials, persists a session record and issues a
// signed token for it. A request with a blank field fails with
// ErrMissingFields before any store is touched.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.Role) == "" {
		return LoginResult{}, ErrMissingFields
	}
	role, ok := ParseRole(req.Role)
	if !ok {
		return LoginResult{}, ErrUnknownRole
	}

	user, err := s.authenticate(ctx, req.Email, req.Password, role)
	if err != nil {
		return LoginResult{}, err
	}

	now := s.opts.Now()
	record := SessionRecord{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.TTL),
	}
	if err := s.Sessions.CreateSession(ctx, record); err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}

	token, err := GenerateToken(s.opts.Secret, Claims{
		SessionID: record.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role.String(),
	}, now, s.opts.TTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	session, err := NewSession(record.ID, user, record.ExpiresAt)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, Session: session}, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string, role Role) (User, error) {
	record, err := s.Users.FindUserByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		if !s.opts.AllowOpenLogin {
			return User{}, ErrInvalidCredentials
		}
		email = normalizeEmail(email)
		return User{Name: DisplayNameFromEmail(email), Email: email, Role: role}, nil
	case err != nil:
		return User{}, fmt.Errorf("find user: %w", err)
	}

	if CheckPassword(record.PasswordHash, password) != nil {
		return User{}, ErrInvalidCredentials
	}
	if record.Role != role {
		return User{}, ErrInvalidCredentials
	}
	return record.User(), nil
}

// Resolve maps a token to its session. Anything that does not lead to a live
// session record yields Anonymous.
func (s *Service) Resolve(ctx context.Context, token string) Session {
	if token == "" {
		return Anonymous
	}
	claims, err := ParseToken(s.opts.Secret, token)
	if err != nil {
		slog.Debug("session token rejected", "err", err)
		return Anonymous
	}
	record, err := s.Sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			slog.Warn("session lookup failed", "sessionId", claims.SessionID, "err", err)
		}
		return Anonymous
	}
	if !record.Live(s.opts.Now()) {
		return Anonymous
	}
	session, err := NewSession(record.ID, record.User, record.ExpiresAt)
	if err != nil {
		slog.Warn("session record invalid", "sessionId", record.ID, "err", err)
		return Anonymous
	}
	return session
}

// Logout revokes the session's record. Logging out an anonymous session is a no-op.
func (s *Service) Logout(ctx context.Context, session Session) error {
	if !session.IsAuthenticated() {
		return nil
	}
	if err := s.Sessions.RevokeSession(ctx, session.ID(), s.opts.Now()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.Sessions.PurgeSessions(ctx, s.opts.Now())
}

// RegisterUser hashes the password and stores a new user.
func (s *Service) RegisterUser(ctx context.Context, id, name, email, password string, role Role) error {
	if !role.Valid() {
		return ErrUnknownRole
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.Users.CreateUser(ctx, UserRecord{
		ID:           id,
		Name:         name,
		Email:        normalizeEmail(email),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.opts.Now(),
	})
}

func (s *Service) Headcount(ctx context.Context) (map[Role]int, error) {
	return s.Users.CountUsersByRole(ctx)
}
