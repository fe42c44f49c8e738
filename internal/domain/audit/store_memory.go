package audit

import (
	"context"
	"slices"

	"ems/internal/platform/memstore"
)

type MemoryStore struct {
	rows *memstore.Table[Event]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: memstore.NewTable[Event]()}
}

func (s *MemoryStore) InsertEvent(_ context.Context, evt Event) error {
	return s.rows.Insert(evt.ID, evt)
}

func (s *MemoryStore) ListEvents(_ context.Context, filter Filter, includeDetails bool) ([]Event, error) {
	rows := s.rows.Select(matcher(filter))
	slices.Reverse(rows)
	rows = memstore.Page(rows, filter.Limit, filter.Offset)
	if !includeDetails {
		for i := range rows {
			rows[i].Before, rows[i].After = nil, nil
		}
	}
	return rows, nil
}

func (s *MemoryStore) CountEvents(_ context.Context, filter Filter) (int, error) {
	return len(s.rows.Select(matcher(filter))), nil
}

func matcher(filter Filter) func(Event) bool {
	return func(evt Event) bool {
		if filter.Action != "" && evt.Action != filter.Action {
			return false
		}
		if filter.EntityType != "" && evt.EntityType != filter.EntityType {
			return false
		}
		return filter.Actor == "" || evt.Actor == filter.Actor
	}
}
