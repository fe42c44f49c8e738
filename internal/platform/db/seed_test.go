package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems/internal/domain/auth"
	"ems/internal/domain/leave"
	"ems/internal/domain/tasks"
	"ems/internal/domain/tickets"
)

func memoryTargets() (SeedTargets, *auth.Service) {
	users := auth.NewMemoryStore()
	authSvc := auth.NewService(users, users, auth.Options{Secret: "seed-secret"})
	return SeedTargets{
		Users:   authSvc,
		Tasks:   tasks.NewMemoryStore(),
		Leaves:  leave.NewMemoryStore(),
		Tickets: tickets.NewMemoryStore(),
	}, authSvc
}

func TestDemoDataParses(t *testing.T) {
	file, err := loadDemo(demoData)
	require.NoError(t, err)
	require.Len(t, file.Users, 3)
	assert.Equal(t, auth.RoleEmployee, file.Users[0].Role)
	assert.Equal(t, auth.RoleHR, file.Users[1].Role)
	assert.Equal(t, auth.RoleAdmin, file.Users[2].Role)
}

func TestLoadDemoRejectsUnknownRole(t *testing.T) {
	_, err := loadDemo([]byte("users:\n  - name: X\n    email: x@company.com\n    role: owner\n"))
	assert.Error(t, err)
}

func TestSeedIsIdempotent(t *testing.T) {
	targets, authSvc := memoryTargets()
	ctx := context.Background()

	first, err := Seed(ctx, targets, "demo123")
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Users: 3, Tasks: 3, Leaves: 3, Tickets: 3}, first)

	second, err := Seed(ctx, targets, "demo123")
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Skipped: 3}, second)

	counts, err := authSvc.Headcount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[auth.RoleEmployee])

	leaves := leave.NewService(targets.Leaves, 20)
	balance, err := leaves.Balance(ctx, "john.smith@company.com")
	require.NoError(t, err)
	assert.Equal(t, leave.Balance{Total: 20, Used: 8, Pending: 1, Remaining: 12}, balance)

	ticketStats, err := tickets.NewService(targets.Tickets).Stats(ctx, "john.smith@company.com")
	require.NoError(t, err)
	assert.Equal(t, tickets.Stats{Total: 3, Pending: 1, InReview: 1, Resolved: 1}, ticketStats)
}

func TestSeededUsersCanLogIn(t *testing.T) {
	targets, authSvc := memoryTargets()
	ctx := context.Background()
	_, err := Seed(ctx, targets, "demo123")
	require.NoError(t, err)

	result, err := authSvc.Login(ctx, auth.LoginRequest{Email: "sarah.johnson@company.com", Password: "demo123", Role: "hr"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleHR, result.Session.Role())
}
