package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ems/internal/platform/ids"
)

// Service manages tasks on behalf of their owner. Every call is scoped to the
// owner's email; another owner's task reads as ErrNotFound.
type Service struct {
	Store StoreAPI
	Now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, Now: time.Now}
}

func (s *Service) List(ctx context.Context, owner, status string, limit, offset int) ([]Task, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.Store.ListTasks(ctx, Filter{OwnerEmail: owner, Status: status, Limit: limit, Offset: offset})
}

func (s *Service) Get(ctx context.Context, owner, id string) (Task, error) {
	task, err := s.Store.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if task.OwnerEmail != owner {
		return Task{}, ErrNotFound
	}
	return task, nil
}

func (s *Service) Create(ctx context.Context, owner string, in Input) (Task, error) {
	in, err := Normalize(in)
	if err != nil {
		return Task{}, err
	}
	task := Task{
		ID:          ids.New(),
		OwnerEmail:  owner,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Status:      in.Status,
		CreatedAt:   s.Now().UTC(),
	}
	if err := s.Store.CreateTask(ctx, task); err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *Service) Update(ctx context.Context, owner, id string, in Input) (Task, error) {
	task, err := s.Get(ctx, owner, id)
	if err != nil {
		return Task{}, err
	}
	in, err = Normalize(in)
	if err != nil {
		return Task{}, err
	}
	task.Title = in.Title
	task.Description = in.Description
	task.DueDate = in.DueDate
	task.Priority = in.Priority
	task.Status = in.Status
	if err := s.Store.UpdateTask(ctx, task); err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (s *Service) SetStatus(ctx context.Context, owner, id, status string) (Task, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !ValidStatus(status) {
		return Task{}, ErrInvalidStatus
	}
	task, err := s.Get(ctx, owner, id)
	if err != nil {
		return Task{}, err
	}
	task.Status = status
	if err := s.Store.UpdateTask(ctx, task); err != nil {
		return Task{}, fmt.Errorf("update task status: %w", err)
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}
	return s.Store.DeleteTask(ctx, id)
}

func (s *Service) Stats(ctx context.Context, owner string) (Stats, error) {
	all, err := s.Store.ListTasks(ctx, Filter{OwnerEmail: owner})
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(all), nil
}

// Recent returns the owner's n newest tasks.
func (s *Service) Recent(ctx context.Context, owner string, n int) ([]Task, error) {
	all, err := s.Store.ListTasks(ctx, Filter{OwnerEmail: owner})
	if err != nil {
		return nil, err
	}
	return Newest(all, n), nil
}
