package tickets

import (
	"context"
	"errors"

	"ems/internal/platform/memstore"
)

type MemoryStore struct {
	rows *memstore.Table[Ticket]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: memstore.NewTable[Ticket]()}
}

func (s *MemoryStore) ListTickets(_ context.Context, filter Filter) ([]Ticket, error) {
	rows := s.rows.Select(func(t Ticket) bool {
		if filter.OwnerEmail != "" && t.OwnerEmail != filter.OwnerEmail {
			return false
		}
		return filter.Status == "" || t.Status == filter.Status
	})
	return memstore.Page(rows, filter.Limit, filter.Offset), nil
}

func (s *MemoryStore) GetTicket(_ context.Context, id string) (Ticket, error) {
	t, err := s.rows.Get(id)
	if errors.Is(err, memstore.ErrNotFound) {
		return Ticket{}, ErrNotFound
	}
	return t, err
}

func (s *MemoryStore) CreateTicket(_ context.Context, t Ticket) error {
	return s.rows.Insert(t.ID, t)
}

func (s *MemoryStore) UpdateTicket(_ context.Context, t Ticket) error {
	_, err := s.rows.UpdateIf(t.ID, func(current Ticket) (Ticket, error) {
		if !CanTransition(current.Status, t.Status) {
			return current, ErrInvalidState
		}
		return t, nil
	})
	if errors.Is(err, memstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
