package tickets

import "context"

type StoreAPI interface {
	ListTickets(ctx context.Context, filter Filter) ([]Ticket, error)
	GetTicket(ctx context.Context, id string) (Ticket, error)
	CreateTicket(ctx context.Context, t Ticket) error
	// UpdateTicket moves the stored row to t when CanTransition allows it from
	// the row's current status, and answers ErrInvalidState otherwise.
	UpdateTicket(ctx context.Context, t Ticket) error
}
