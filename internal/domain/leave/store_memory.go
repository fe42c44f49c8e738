package leave

import (
	"context"
	"errors"

	"ems/internal/platform/memstore"
)

type MemoryStore struct {
	rows *memstore.Table[Leave]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: memstore.NewTable[Leave]()}
}

func (s *MemoryStore) ListLeaves(_ context.Context, filter Filter) ([]Leave, error) {
	rows := s.rows.Select(func(l Leave) bool {
		if filter.OwnerEmail != "" && l.OwnerEmail != filter.OwnerEmail {
			return false
		}
		return filter.Status == "" || l.Status == filter.Status
	})
	return memstore.Page(rows, filter.Limit, filter.Offset), nil
}

func (s *MemoryStore) GetLeave(_ context.Context, id string) (Leave, error) {
	l, err := s.rows.Get(id)
	if errors.Is(err, memstore.ErrNotFound) {
		return Leave{}, ErrNotFound
	}
	return l, err
}

func (s *MemoryStore) CreateLeave(_ context.Context, l Leave) error {
	return s.rows.Insert(l.ID, l)
}

func (s *MemoryStore) UpdateLeave(_ context.Context, l Leave, from string) error {
	_, err := s.rows.UpdateIf(l.ID, func(current Leave) (Leave, error) {
		if current.Status != from {
			return current, ErrInvalidState
		}
		return l, nil
	})
	if errors.Is(err, memstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *MemoryStore) DeleteLeave(_ context.Context, id, from string) error {
	err := s.rows.DeleteIf(id, func(current Leave) error {
		if current.Status != from {
			return ErrInvalidState
		}
		return nil
	})
	if errors.Is(err, memstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
