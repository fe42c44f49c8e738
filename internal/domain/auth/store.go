package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ems/internal/platform/querier"
)

// Store is the postgres-backed user and session store.
type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (UserRecord, error) {
	var out UserRecord
	var role string
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, email, role, password_hash, created_at
    FROM users
    WHERE email = $1
  `, normalizeEmail(email)).Scan(&out.ID, &out.Name, &out.Email, &role, &out.PasswordHash, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserRecord{}, ErrUserNotFound
	}
	if err != nil {
		return UserRecord{}, err
	}
	parsed, ok := ParseRole(role)
	if !ok {
		return UserRecord{}, fmt.Errorf("user %s: %w", out.ID, ErrUnknownRole)
	}
	out.Role = parsed
	return out, nil
}

func (s *Store) CreateUser(ctx context.Context, user UserRecord) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO users (id, name, email, role, password_hash, created_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, user.ID, user.Name, normalizeEmail(user.Email), user.Role.String(), user.PasswordHash, user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (s *Store) CountUsersByRole(ctx context.Context) (map[Role]int, error) {
	rows, err := s.DB.Query(ctx, "SELECT role, COUNT(1) FROM users GROUP BY role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[Role]int{}
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		if role, ok := ParseRole(name); ok {
			out[role] = count
		}
	}
	return out, rows.Err()
}

func (s *Store) CreateSession(ctx context.Context, record SessionRecord) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (id, user_email, user_name, role, created_at, expires_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, record.ID, record.User.Email, record.User.Name, record.User.Role.String(), record.CreatedAt, record.ExpiresAt)
	return err
}

func (s *Store) GetSession(ctx context.Context, id string) (SessionRecord, error) {
	var out SessionRecord
	var role string
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_email, user_name, role, created_at, expires_at, revoked_at
    FROM sessions
    WHERE id = $1
  `, id).Scan(&out.ID, &out.User.Email, &out.User.Name, &role, &out.CreatedAt, &out.ExpiresAt, &out.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SessionRecord{}, ErrSessionNotFound
	}
	if err != nil {
		return SessionRecord{}, err
	}
	parsed, ok := ParseRole(role)
	if !ok {
		return SessionRecord{}, fmt.Errorf("session %s: %w", id, ErrUnknownRole)
	}
	out.User.Role = parsed
	return out, nil
}

func (s *Store) RevokeSession(ctx context.Context, id string, at time.Time) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL", at, id)
	return err
}

func (s *Store) PurgeSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= $1 OR revoked_at IS NOT NULL", now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
