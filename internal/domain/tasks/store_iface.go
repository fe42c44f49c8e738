package tasks

import "context"

type StoreAPI interface {
	ListTasks(ctx context.Context, filter Filter) ([]Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	CreateTask(ctx context.Context, task Task) error
	UpdateTask(ctx context.Context, task Task) error
	DeleteTask(ctx context.Context, id string) error
}
