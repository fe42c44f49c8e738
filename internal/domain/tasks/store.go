package tasks

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"ems/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ListTasks(ctx context.Context, filter Filter) ([]Task, error) {
	limit := any(nil)
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, owner_email, title, description, due_date, priority, status, created_at
    FROM tasks
    WHERE ($1 = '' OR owner_email = $1)
      AND ($2 = '' OR status = $2)
    ORDER BY created_at, id
    LIMIT $3 OFFSET $4
  `, filter.OwnerEmail, filter.Status, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.OwnerEmail, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, id string) (Task, error) {
	var t Task
	err := s.DB.QueryRow(ctx, `
    SELECT id, owner_email, title, description, due_date, priority, status, created_at
    FROM tasks
    WHERE id = $1
  `, id).Scan(&t.ID, &t.OwnerEmail, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Status, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *Store) CreateTask(ctx context.Context, t Task) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO tasks (id, owner_email, title, description, due_date, priority, status, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, t.ID, t.OwnerEmail, t.Title, t.Description, t.DueDate, t.Priority, t.Status, t.CreatedAt)
	return err
}

func (s *Store) UpdateTask(ctx context.Context, t Task) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tasks
    SET title = $1, description = $2, due_date = $3, priority = $4, status = $5
    WHERE id = $6
  `, t.Title, t.Description, t.DueDate, t.Priority, t.Status, t.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
