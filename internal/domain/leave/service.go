package leave

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ems/internal/platform/ids"
)

type Service struct {
	Store     StoreAPI
	Allowance float64
	Now       func() time.Time
}

func NewService(store StoreAPI, allowance float64) *Service {
	return &Service{Store: store, Allowance: allowance, Now: time.Now}
}

func (s *Service) normalizeStatus(status string) (string, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !ValidStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// List returns the owner's own applications.
func (s *Service) List(ctx context.Context, owner, status string, limit, offset int) ([]Leave, error) {
	status, err := s.normalizeStatus(status)
	if err != nil {
		return nil, err
	}
	return s.Store.ListLeaves(ctx, Filter{OwnerEmail: owner, Status: status, Limit: limit, Offset: offset})
}

// ListAll returns every employee's applications for reviewers.
func (s *Service) ListAll(ctx context.Context, status string, limit, offset int) ([]Leave, error) {
	status, err := s.normalizeStatus(status)
	if err != nil {
		return nil, err
	}
	return s.Store.ListLeaves(ctx, Filter{Status: status, Limit: limit, Offset: offset})
}

func (s *Service) Get(ctx context.Context, owner, id string) (Leave, error) {
	l, err := s.Store.GetLeave(ctx, id)
	if err != nil {
		return Leave{}, err
	}
	if l.OwnerEmail != owner {
		return Leave{}, ErrNotFound
	}
	return l, nil
}

func (s *Service) Create(ctx context.Context, owner string, in Input) (Leave, error) {
	in, days, err := Normalize(in)
	if err != nil {
		return Leave{}, err
	}
	l := Leave{
		ID:          ids.New(),
		OwnerEmail:  owner,
		Type:        in.Type,
		FromDate:    in.FromDate,
		ToDate:      in.ToDate,
		Days:        days,
		Reason:      in.Reason,
		Status:      StatusPending,
		AppliedDate: s.Now().UTC(),
	}
	if err := s.Store.CreateLeave(ctx, l); err != nil {
		return Leave{}, fmt.Errorf("create leave: %w", err)
	}
	return l, nil
}

// Update edits a pending application. Decided applications are immutable.
func (s *Service) Update(ctx context.Context, owner, id string, in Input) (Leave, error) {
	l, err := s.Get(ctx, owner, id)
	if err != nil {
		return Leave{}, err
	}
	if l.Status != StatusPending {
		return Leave{}, ErrInvalidState
	}
	in, days, err := Normalize(in)
	if err != nil {
		return Leave{}, err
	}
	l.Type, l.FromDate, l.ToDate, l.Days, l.Reason = in.Type, in.FromDate, in.ToDate, days, in.Reason
	if err := s.Store.UpdateLeave(ctx, l, StatusPending); err != nil {
		return Leave{}, fmt.Errorf("update leave: %w", err)
	}
	return l, nil
}

func (s *Service) Delete(ctx context.Context, owner, id string) error {
	l, err := s.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if l.Status != StatusPending {
		return ErrInvalidState
	}
	return s.Store.DeleteLeave(ctx, id, StatusPending)
}

func (s *Service) Approve(ctx context.Context, id, reviewer string) (Leave, error) {
	return s.decide(ctx, id, reviewer, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, id, reviewer string) (Leave, error) {
	return s.decide(ctx, id, reviewer, StatusRejected)
}

func (s *Service) decide(ctx context.Context, id, reviewer, status string) (Leave, error) {
	l, err := s.Store.GetLeave(ctx, id)
	if err != nil {
		return Leave{}, err
	}
	if l.Status != StatusPending {
		return Leave{}, ErrInvalidState
	}
	now := s.Now().UTC()
	l.Status = status
	l.DecidedBy = reviewer
	l.DecidedAt = &now
	if err := s.Store.UpdateLeave(ctx, l, StatusPending); err != nil {
		return Leave{}, fmt.Errorf("decide leave: %w", err)
	}
	return l, nil
}

func (s *Service) Balance(ctx context.Context, owner string) (Balance, error) {
	list, err := s.Store.ListLeaves(ctx, Filter{OwnerEmail: owner})
	if err != nil {
		return Balance{}, err
	}
	return ComputeBalance(list, s.Allowance), nil
}

// Counts tallies applications across all employees.
func (s *Service) Counts(ctx context.Context) (StatusCounts, error) {
	list, err := s.Store.ListLeaves(ctx, Filter{})
	if err != nil {
		return StatusCounts{}, err
	}
	return CountByStatus(list), nil
}

// Recent returns the n newest applications across all employees.
func (s *Service) Recent(ctx context.Context, n int) ([]Leave, error) {
	list, err := s.Store.ListLeaves(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	return Newest(list, n), nil
}
