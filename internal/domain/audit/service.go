package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ems/internal/platform/ids"
)

type Service struct {
	Store StoreAPI
	Now   func() time.Time
}

func New(store StoreAPI) *Service {
	return &Service{Store: store, Now: time.Now}
}

// Record stores one event. before and after are marshalled as JSON snapshots
// of the entity and may be nil.
func (s *Service) Record(ctx context.Context, actor, action, entityType, entityID, requestID, ip string, before, after any) error {
	evt := Event{
		ID:         ids.New(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestID,
		IP:         ip,
		CreatedAt:  s.Now().UTC(),
	}
	var err error
	if evt.Before, err = snapshot(before); err != nil {
		return fmt.Errorf("audit before snapshot: %w", err)
	}
	if evt.After, err = snapshot(after); err != nil {
		return fmt.Errorf("audit after snapshot: %w", err)
	}
	return s.Store.InsertEvent(ctx, evt)
}

func (s *Service) List(ctx context.Context, filter Filter, includeDetails bool) ([]Event, error) {
	return s.Store.ListEvents(ctx, filter, includeDetails)
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	return s.Store.CountEvents(ctx, filter)
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
