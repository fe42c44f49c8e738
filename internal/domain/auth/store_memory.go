package auth

import (
	"context"
	"errors"
	"time"

	"ems/internal/platform/memstore"
)

// MemoryStore keeps users and sessions in process memory.
type MemoryStore struct {
	users    *memstore.Table[UserRecord]
	sessions *memstore.Table[SessionRecord]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    memstore.NewTable[UserRecord](),
		sessions: memstore.NewTable[SessionRecord](),
	}
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (UserRecord, error) {
	user, err := s.users.Get(normalizeEmail(email))
	if errors.Is(err, memstore.ErrNotFound) {
		return UserRecord{}, ErrUserNotFound
	}
	return user, err
}

func (s *MemoryStore) CreateUser(_ context.Context, user UserRecord) error {
	user.Email = normalizeEmail(user.Email)
	if err := s.users.Insert(user.Email, user); err != nil {
		if errors.Is(err, memstore.ErrDuplicate) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *MemoryStore) CountUsersByRole(_ context.Context) (map[Role]int, error) {
	out := map[Role]int{}
	for _, user := range s.users.Select(nil) {
		out[user.Role]++
	}
	return out, nil
}

func (s *MemoryStore) CreateSession(_ context.Context, record SessionRecord) error {
	return s.sessions.Insert(record.ID, record)
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (SessionRecord, error) {
	record, err := s.sessions.Get(id)
	if errors.Is(err, memstore.ErrNotFound) {
		return SessionRecord{}, ErrSessionNotFound
	}
	return record, err
}

func (s *MemoryStore) RevokeSession(_ context.Context, id string, at time.Time) error {
	record, err := s.sessions.Get(id)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if record.RevokedAt != nil {
		return nil
	}
	record.RevokedAt = &at
	return s.sessions.Update(id, record)
}

func (s *MemoryStore) PurgeSessions(_ context.Context, now time.Time) (int64, error) {
	removed := s.sessions.DeleteWhere(func(record SessionRecord) bool {
		return !record.Live(now)
	})
	return int64(removed), nil
}
