package tasks

import (
	"context"
	"errors"

	"ems/internal/platform/memstore"
)

type MemoryStore struct {
	rows *memstore.Table[Task]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: memstore.NewTable[Task]()}
}

func (s *MemoryStore) ListTasks(_ context.Context, filter Filter) ([]Task, error) {
	rows := s.rows.Select(func(task Task) bool {
		if filter.OwnerEmail != "" && task.OwnerEmail != filter.OwnerEmail {
			return false
		}
		return filter.Status == "" || task.Status == filter.Status
	})
	return memstore.Page(rows, filter.Limit, filter.Offset), nil
}

func (s *MemoryStore) GetTask(_ context.Context, id string) (Task, error) {
	task, err := s.rows.Get(id)
	if errors.Is(err, memstore.ErrNotFound) {
		return Task{}, ErrNotFound
	}
	return task, err
}

func (s *MemoryStore) CreateTask(_ context.Context, task Task) error {
	return s.rows.Insert(task.ID, task)
}

func (s *MemoryStore) UpdateTask(_ context.Context, task Task) error {
	if err := s.rows.Update(task.ID, task); errors.Is(err, memstore.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, id string) error {
	if err := s.rows.Delete(id); errors.Is(err, memstore.ErrNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return nil
}
