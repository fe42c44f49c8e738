package audit

import "context"

type StoreAPI interface {
	InsertEvent(ctx context.Context, evt Event) error
	// ListEvents returns newest first. Before and After are only filled when
	// includeDetails is set.
	ListEvents(ctx context.Context, filter Filter, includeDetails bool) ([]Event, error)
	CountEvents(ctx context.Context, filter Filter) (int, error)
}
