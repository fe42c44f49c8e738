package dashboard

import (
	"context"
	"errors"
	"fmt"

	"ems/internal/domain/auth"
	"ems/internal/domain/leave"
	"ems/internal/domain/tasks"
	"ems/internal/domain/tickets"
)

var ErrNoRole = errors.New("session has no role")

// RecentLimit caps each list on the dashboard.
const RecentLimit = 5

type TaskStats interface {
	Stats(ctx context.Context, owner string) (tasks.Stats, error)
	Recent(ctx context.Context, owner string, n int) ([]tasks.Task, error)
}

type LeaveStats interface {
	Balance(ctx context.Context, owner string) (leave.Balance, error)
	Counts(ctx context.Context) (leave.StatusCounts, error)
	Recent(ctx context.Context, n int) ([]leave.Leave, error)
}

type TicketStats interface {
	Stats(ctx context.Context, owner string) (tickets.Stats, error)
	StatsAll(ctx context.Context) (tickets.Stats, error)
	OpenCritical(ctx context.Context, n int) ([]tickets.Ticket, error)
}

type Headcounter interface {
	Headcount(ctx context.Context) (map[auth.Role]int, error)
}

// Summary is the dashboard payload. Only the fields relevant to Role are set.
type Summary struct {
	Role         auth.Role           `json:"role"`
	Tasks        *tasks.Stats        `json:"tasks,omitempty"`
	LeaveBalance *leave.Balance      `json:"leaveBalance,omitempty"`
	Leaves       *leave.StatusCounts `json:"leaves,omitempty"`
	Tickets      *tickets.Stats      `json:"tickets,omitempty"`
	Employees    *int                `json:"employees,omitempty"`
	Headcount    map[string]int      `json:"headcount,omitempty"`

	RecentTasks     []tasks.Task     `json:"recentTasks,omitempty"`
	RecentLeaves    []leave.Leave    `json:"recentLeaves,omitempty"`
	CriticalTickets []tickets.Ticket `json:"criticalTickets,omitempty"`
}

type Service struct {
	Tasks   TaskStats
	Leaves  LeaveStats
	Tickets TicketStats
	Users   Headcounter
}

func NewService(t TaskStats, l LeaveStats, tk TicketStats, users Headcounter) *Service {
	return &Service{Tasks: t, Leaves: l, Tickets: tk, Users: users}
}

func (s *Service) Summary(ctx context.Context, session auth.Session) (Summary, error) {
	role := session.Role()
	switch role {
	case auth.RoleEmployee:
		return s.employee(ctx, session.Email())
	case auth.RoleHR:
		return s.hr(ctx)
	case auth.RoleAdmin:
		return s.admin(ctx)
	default:
		return Summary{}, ErrNoRole
	}
}

func (s *Service) employee(ctx context.Context, owner string) (Summary, error) {
	taskStats, err := s.Tasks.Stats(ctx, owner)
	if err != nil {
		return Summary{}, fmt.Errorf("task stats: %w", err)
	}
	balance, err := s.Leaves.Balance(ctx, owner)
	if err != nil {
		return Summary{}, fmt.Errorf("leave balance: %w", err)
	}
	ticketStats, err := s.Tickets.Stats(ctx, owner)
	if err != nil {
		return Summary{}, fmt.Errorf("ticket stats: %w", err)
	}
	recent, err := s.Tasks.Recent(ctx, owner, RecentLimit)
	if err != nil {
		return Summary{}, fmt.Errorf("recent tasks: %w", err)
	}
	return Summary{Role: auth.RoleEmployee, Tasks: &taskStats, LeaveBalance: &balance, Tickets: &ticketStats, RecentTasks: recent}, nil
}

func (s *Service) hr(ctx context.Context) (Summary, error) {
	counts, err := s.Users.Headcount(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("headcount: %w", err)
	}
	employees := counts[auth.RoleEmployee]
	leaves, err := s.Leaves.Counts(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("leave counts: %w", err)
	}
	ticketStats, err := s.Tickets.StatsAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("ticket stats: %w", err)
	}
	recent, err := s.Leaves.Recent(ctx, RecentLimit)
	if err != nil {
		return Summary{}, fmt.Errorf("recent leaves: %w", err)
	}
	return Summary{Role: auth.RoleHR, Employees: &employees, Leaves: &leaves, Tickets: &ticketStats, RecentLeaves: recent}, nil
}

func (s *Service) admin(ctx context.Context) (Summary, error) {
	counts, err := s.Users.Headcount(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("headcount: %w", err)
	}
	headcount := make(map[string]int, len(auth.Roles))
	for _, role := range auth.Roles {
		headcount[role.String()] = counts[role]
	}
	ticketStats, err := s.Tickets.StatsAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("ticket stats: %w", err)
	}
	critical, err := s.Tickets.OpenCritical(ctx, RecentLimit)
	if err != nil {
		return Summary{}, fmt.Errorf("critical tickets: %w", err)
	}
	return Summary{Role: auth.RoleAdmin, Headcount: headcount, Tickets: &ticketStats, CriticalTickets: critical}, nil
}
