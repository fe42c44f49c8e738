package tickets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ems/internal/platform/ids"
)

type Service struct {
	Store StoreAPI
	Now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, Now: time.Now}
}

func normalizeStatus(status string) (string, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !ValidStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s *Service) List(ctx context.Context, owner, status string, limit, offset int) ([]Ticket, error) {
	status, err := normalizeStatus(status)
	if err != nil {
		return nil, err
	}
	return s.Store.ListTickets(ctx, Filter{OwnerEmail: owner, Status: status, Limit: limit, Offset: offset})
}

func (s *Service) ListAll(ctx context.Context, status string, limit, offset int) ([]Ticket, error) {
	status, err := normalizeStatus(status)
	if err != nil {
		return nil, err
	}
	return s.Store.ListTickets(ctx, Filter{Status: status, Limit: limit, Offset: offset})
}

func (s *Service) Get(ctx context.Context, owner, id string) (Ticket, error) {
	t, err := s.Store.GetTicket(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if t.OwnerEmail != owner {
		return Ticket{}, ErrNotFound
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, owner string, in Input) (Ticket, error) {
	in, err := Normalize(in)
	if err != nil {
		return Ticket{}, err
	}
	t := Ticket{
		ID:          ids.New(),
		OwnerEmail:  owner,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Urgency:     in.Urgency,
		Status:      StatusPending,
		CreatedAt:   s.Now().UTC(),
	}
	if err := s.Store.CreateTicket(ctx, t); err != nil {
		return Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	return t, nil
}

// Review moves a pending ticket into review.
func (s *Service) Review(ctx context.Context, id string) (Ticket, error) {
	t, err := s.Store.GetTicket(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if !CanTransition(t.Status, StatusInReview) {
		return Ticket{}, ErrInvalidState
	}
	t.Status = StatusInReview
	if err := s.Store.UpdateTicket(ctx, t); err != nil {
		return Ticket{}, fmt.Errorf("review ticket: %w", err)
	}
	return t, nil
}

func (s *Service) Resolve(ctx context.Context, id, response string) (Ticket, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return Ticket{}, ErrResponseRequired
	}
	t, err := s.Store.GetTicket(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if !CanTransition(t.Status, StatusResolved) {
		return Ticket{}, ErrInvalidState
	}
	now := s.Now().UTC()
	t.Status = StatusResolved
	t.ResolvedAt = &now
	t.Response = response
	if err := s.Store.UpdateTicket(ctx, t); err != nil {
		return Ticket{}, fmt.Errorf("resolve ticket: %w", err)
	}
	return t, nil
}

func (s *Service) Stats(ctx context.Context, owner string) (Stats, error) {
	list, err := s.Store.ListTickets(ctx, Filter{OwnerEmail: owner})
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(list), nil
}

// StatsAll covers every employee's tickets.
func (s *Service) StatsAll(ctx context.Context) (Stats, error) {
	return s.Stats(ctx, "")
}

// OpenCritical returns the n most pressing unresolved tickets.
func (s *Service) OpenCritical(ctx context.Context, n int) ([]Ticket, error) {
	list, err := s.Store.ListTickets(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	return Critical(list, n), nil
}
