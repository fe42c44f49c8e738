package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	svc := New(NewMemoryStore())
	tick := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "john.smith@company.com", ActionLogin, EntitySession, "s1", "r1", "10.0.0.1", nil, nil))
	require.NoError(t, svc.Record(ctx, "sarah.johnson@company.com", ActionLeaveApprove, EntityLeave, "l1", "r2", "10.0.0.2",
		map[string]string{"status": "pending"}, map[string]string{"status": "approved"}))
	require.NoError(t, svc.Record(ctx, "sarah.johnson@company.com", ActionTicketResolve, EntityTicket, "t1", "r3", "10.0.0.2", nil, nil))

	all, err := svc.List(ctx, Filter{}, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ActionTicketResolve, all[0].Action)
	assert.Nil(t, all[1].Before)

	detailed, err := svc.List(ctx, Filter{Action: ActionLeaveApprove}, true)
	require.NoError(t, err)
	require.Len(t, detailed, 1)
	assert.JSONEq(t, `{"status":"pending"}`, string(detailed[0].Before))
	assert.JSONEq(t, `{"status":"approved"}`, string(detailed[0].After))

	n, err := svc.Count(ctx, Filter{Actor: "sarah.johnson@company.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := svc.List(ctx, Filter{Limit: 1, Offset: 1}, false)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ActionLeaveApprove, page[0].Action)
}
