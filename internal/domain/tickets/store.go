package tickets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"ems/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const ticketColumns = `id, owner_email, title, description, category, urgency, status, created_at, resolved_at, response`

func scanTicket(row pgx.Row) (Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.OwnerEmail, &t.Title, &t.Description, &t.Category, &t.Urgency, &t.Status, &t.CreatedAt, &t.ResolvedAt, &t.Response)
	return t, err
}

func (s *Store) ListTickets(ctx context.Context, filter Filter) ([]Ticket, error) {
	limit := any(nil)
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+ticketColumns+`
    FROM tickets
    WHERE ($1 = '' OR owner_email = $1)
      AND ($2 = '' OR status = $2)
    ORDER BY created_at, id
    LIMIT $3 OFFSET $4
  `, filter.OwnerEmail, filter.Status, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTicket(ctx context.Context, id string) (Ticket, error) {
	t, err := scanTicket(s.DB.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Ticket{}, ErrNotFound
	}
	return t, err
}

func (s *Store) CreateTicket(ctx context.Context, t Ticket) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO tickets (`+ticketColumns+`)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
  `, t.ID, t.OwnerEmail, t.Title, t.Description, t.Category, t.Urgency, t.Status, t.CreatedAt, t.ResolvedAt, t.Response)
	return err
}

func (s *Store) UpdateTicket(ctx context.Context, t Ticket) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tickets
    SET status = $1, resolved_at = $2, response = $3
    WHERE id = $4 AND status = ANY($5)
  `, t.Status, t.ResolvedAt, t.Response, t.ID, sourcesOf(t.Status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.DB.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM tickets WHERE id = $1)", t.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInvalidState
	}
	return nil
}

// sourcesOf lists the statuses a ticket may move to status from.
func sourcesOf(status string) []string {
	out := []string{}
	for _, from := range Statuses {
		if CanTransition(from, status) {
			out = append(out, from)
		}
	}
	return out
}
