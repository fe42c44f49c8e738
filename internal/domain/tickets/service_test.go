package tickets

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "john.smith@company.com"

func TestCreateDefaultsAndValidation(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	ticket, err := svc.Create(ctx, owner, Input{Title: "Laptop running very slow", Category: "Technical"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, ticket.Status)
	assert.Equal(t, CategoryTechnical, ticket.Category)
	assert.Equal(t, UrgencyMedium, ticket.Urgency)
	assert.Nil(t, ticket.ResolvedAt)

	_, err = svc.Create(ctx, owner, Input{Category: CategoryHR})
	assert.ErrorIs(t, err, ErrTitleRequired)
	_, err = svc.Create(ctx, owner, Input{Title: "x", Category: "facilities"})
	assert.ErrorIs(t, err, ErrInvalidCategory)
	_, err = svc.Create(ctx, owner, Input{Title: "x", Urgency: "asap"})
	assert.ErrorIs(t, err, ErrInvalidUrgency)
}

func TestTransitionsOnlyMoveForward(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	ticket, err := svc.Create(ctx, owner, Input{Title: "Office air conditioning not working", Category: CategoryWorkplace, Urgency: UrgencyHigh})
	require.NoError(t, err)

	reviewed, err := svc.Review(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInReview, reviewed.Status)

	_, err = svc.Review(ctx, ticket.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Resolve(ctx, ticket.ID, "  ")
	assert.ErrorIs(t, err, ErrResponseRequired)

	resolved, err := svc.Resolve(ctx, ticket.ID, "Technician fixed the unit.")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "Technician fixed the unit.", resolved.Response)

	_, err = svc.Resolve(ctx, ticket.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.Review(ctx, ticket.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Review(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListingAndStats(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	mine, err := svc.Create(ctx, owner, Input{Title: "Questions about health insurance", Category: CategoryHR, Urgency: UrgencyLow})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "other@company.com", Input{Title: "Broken chair", Category: CategoryEquipment, Urgency: UrgencyCritical})
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, mine.ID, "Benefits guide sent.")
	require.NoError(t, err)

	own, err := svc.List(ctx, owner, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, own, 1)

	_, err = svc.Get(ctx, "other@company.com", mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.ListAll(ctx, StatusPending, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	stats, err := svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Resolved: 1}, stats)

	overall, err := svc.StatsAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Pending: 1, Resolved: 1, CriticalOpen: 1}, overall)

	_, err = svc.ListAll(ctx, "open", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

type gatedStore struct {
	*MemoryStore
	readers sync.WaitGroup
}

func (g *gatedStore) GetTicket(ctx context.Context, id string) (Ticket, error) {
	t, err := g.MemoryStore.GetTicket(ctx, id)
	g.readers.Done()
	g.readers.Wait()
	return t, err
}

func TestConcurrentReviewCannotUndoResolve(t *testing.T) {
	store := &gatedStore{MemoryStore: NewMemoryStore()}
	svc := NewService(store)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, owner, Input{Title: "Broken chair", Category: CategoryEquipment, Urgency: UrgencyHigh})
	require.NoError(t, err)

	store.readers.Add(2)
	var wg sync.WaitGroup
	var resolveErr, reviewErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, resolveErr = svc.Resolve(ctx, ticket.ID, "Replacement ordered.")
	}()
	go func() {
		defer wg.Done()
		_, reviewErr = svc.Review(ctx, ticket.ID)
	}()
	wg.Wait()

	require.NoError(t, resolveErr)
	final, err := store.MemoryStore.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, final.Status)
	assert.Equal(t, "Replacement ordered.", final.Response)
	require.NotNil(t, final.ResolvedAt)
	if reviewErr != nil {
		assert.ErrorIs(t, reviewErr, ErrInvalidState)
	}
}
