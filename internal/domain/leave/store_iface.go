package leave

import "context"

type StoreAPI interface {
	ListLeaves(ctx context.Context, filter Filter) ([]Leave, error)
	GetLeave(ctx context.Context, id string) (Leave, error)
	CreateLeave(ctx context.Context, l Leave) error
	// UpdateLeave writes l only while the stored row is still in status from,
	// and answers ErrInvalidState otherwise.
	UpdateLeave(ctx context.Context, l Leave, from string) error
	DeleteLeave(ctx context.Context, id, from string) error
}
