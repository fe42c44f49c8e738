package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"ems/internal/domain/auth"
	"ems/internal/domain/leave"
	"ems/internal/domain/tasks"
	"ems/internal/domain/tickets"
	"ems/internal/platform/ids"
)

//go:embed seed/demo.yaml
var demoData []byte

type UserRegistrar interface {
	RegisterUser(ctx context.Context, id, name, email, password string, role auth.Role) error
}

// SeedTargets are the stores demo data is written to. Seeding works the same
// against memory and postgres backends.
type SeedTargets struct {
	Users   UserRegistrar
	Tasks   tasks.StoreAPI
	Leaves  leave.StoreAPI
	Tickets tickets.StoreAPI
}

type SeedResult struct {
	Users   int `json:"users"`
	Skipped int `json:"skipped"`
	Tasks   int `json:"tasks"`
	Leaves  int `json:"leaves"`
	Tickets int `json:"tickets"`
}

type demoFile struct {
	Users []demoUser `yaml:"users"`
}

type demoUser struct {
	Name    string       `yaml:"name"`
	Email   string       `yaml:"email"`
	Role    auth.Role    `yaml:"role"`
	Tasks   []demoTask   `yaml:"tasks"`
	Leaves  []demoLeave  `yaml:"leaves"`
	Tickets []demoTicket `yaml:"tickets"`
}

type demoTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	DueDate     string `yaml:"dueDate"`
	Priority    string `yaml:"priority"`
	Status      string `yaml:"status"`
	CreatedAt   string `yaml:"createdAt"`
}

type demoLeave struct {
	Type        string `yaml:"type"`
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	Reason      string `yaml:"reason"`
	Status      string `yaml:"status"`
	AppliedDate string `yaml:"appliedDate"`
	DecidedBy   string `yaml:"decidedBy"`
}

type demoTicket struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Urgency     string `yaml:"urgency"`
	Status      string `yaml:"status"`
	CreatedAt   string `yaml:"createdAt"`
	ResolvedAt  string `yaml:"resolvedAt"`
	Response    string `yaml:"response"`
}

func loadDemo(data []byte) (demoFile, error) {
	var file demoFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse demo data: %w", err)
	}
	for _, u := range file.Users {
		if !u.Role.Valid() {
			return file, fmt.Errorf("demo user %s: %w", u.Email, auth.ErrUnknownRole)
		}
	}
	return file, nil
}

// Seed loads the embedded demo users and their records. A user whose email
// already exists is skipped together with its records, so reseeding is safe.
func Seed(ctx context.Context, targets SeedTargets, password string) (SeedResult, error) {
	file, err := loadDemo(demoData)
	if err != nil {
		return SeedResult{}, err
	}

	var result SeedResult
	for _, u := range file.Users {
		err := targets.Users.RegisterUser(ctx, ids.New(), u.Name, u.Email, password, u.Role)
		if errors.Is(err, auth.ErrEmailTaken) {
			result.Skipped++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		result.Users++

		if err := seedRecords(ctx, targets, u, &result); err != nil {
			return result, fmt.Errorf("seed records for %s: %w", u.Email, err)
		}
	}
	slog.Info("demo data seeded", "users", result.Users, "skipped", result.Skipped, "tasks", result.Tasks, "leaves", result.Leaves, "tickets", result.Tickets)
	return result, nil
}

func seedRecords(ctx context.Context, targets SeedTargets, u demoUser, result *SeedResult) error {
	for _, t := range u.Tasks {
		task := tasks.Task{
			ID:          ids.New(),
			OwnerEmail:  u.Email,
			Title:       t.Title,
			Description: t.Description,
			DueDate:     mustDate(t.DueDate),
			Priority:    t.Priority,
			Status:      t.Status,
			CreatedAt:   mustDate(t.CreatedAt),
		}
		if err := targets.Tasks.CreateTask(ctx, task); err != nil {
			return err
		}
		result.Tasks++
	}

	for _, l := range u.Leaves {
		from, to := mustDate(l.From), mustDate(l.To)
		days, err := leave.CalculateDays(from, to)
		if err != nil {
			return err
		}
		record := leave.Leave{
			ID:          ids.New(),
			OwnerEmail:  u.Email,
			Type:        l.Type,
			FromDate:    from,
			ToDate:      to,
			Days:        days,
			Reason:      l.Reason,
			Status:      l.Status,
			AppliedDate: mustDate(l.AppliedDate),
			DecidedBy:   l.DecidedBy,
		}
		if l.Status != leave.StatusPending {
			decided := record.AppliedDate.Add(24 * time.Hour)
			record.DecidedAt = &decided
		}
		if err := targets.Leaves.CreateLeave(ctx, record); err != nil {
			return err
		}
		result.Leaves++
	}

	for _, t := range u.Tickets {
		ticket := tickets.Ticket{
			ID:          ids.New(),
			OwnerEmail:  u.Email,
			Title:       t.Title,
			Description: t.Description,
			Category:    t.Category,
			Urgency:     t.Urgency,
			Status:      t.Status,
			CreatedAt:   mustDate(t.CreatedAt),
			Response:    t.Response,
		}
		if t.ResolvedAt != "" {
			resolved := mustDate(t.ResolvedAt)
			ticket.ResolvedAt = &resolved
		}
		if err := targets.Tickets.CreateTicket(ctx, ticket); err != nil {
			return err
		}
		result.Tickets++
	}
	return nil
}

// mustDate parses the YYYY-MM-DD dates of the embedded demo file.
func mustDate(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(fmt.Sprintf("demo data date %q: %v", value, err))
	}
	return parsed
}
