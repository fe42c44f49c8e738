package leave

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

const leaveColumns = `id, owner_email, leave_type, from_date, to_date, days, reason, status, applied_date, decided_by, decided_at`

func scanLeave(row pgx.Row) (Leave, error) {
	var l Leave
	var decidedBy *string
	err := row.Scan(&l.ID, &l.OwnerEmail, &l.Type, &l.FromDate, &l.ToDate, &l.Days, &l.Reason, &l.Status, &l.AppliedDate, &decidedBy, &l.DecidedAt)
	if decidedBy != nil {
		l.DecidedBy = *decidedBy
	}
	return l, err
}

func (s *Store) ListLeaves(ctx context.Context, filter Filter) ([]Leave, error) {
	limit := any(nil)
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	rows, err := s.DB.Query(ctx, `
    SELECT `+leaveColumns+`
    FROM leaves
    WHERE ($1 = '' OR owner_email = $1)
      AND ($2 = '' OR status = $2)
    ORDER BY applied_date, id
    LIMIT $3 OFFSET $4
  `, filter.OwnerEmail, filter.Status, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Leave{}
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) GetLeave(ctx context.Context, id string) (Leave, error) {
	l, err := scanLeave(s.DB.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leaves WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Leave{}, ErrNotFound
	}
	return l, err
}

func (s *Store) CreateLeave(ctx context.Context, l Leave) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leaves (`+leaveColumns+`)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''),$11)
  `, l.ID, l.OwnerEmail, l.Type, l.FromDate, l.ToDate, l.Days, l.Reason, l.Status, l.AppliedDate, l.DecidedBy, l.DecidedAt)
	return err
}

func (s *Store) UpdateLeave(ctx context.Context, l Leave, from string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leaves
    SET leave_type = $1, from_date = $2, to_date = $3, days = $4, reason = $5,
        status = $6, decided_by = NULLIF($7,''), decided_at = $8
    WHERE id = $9 AND status = $10
  `, l.Type, l.FromDate, l.ToDate, l.Days, l.Reason, l.Status, l.DecidedBy, l.DecidedAt, l.ID, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.missOrConflict(ctx, l.ID)
	}
	return nil
}

func (s *Store) DeleteLeave(ctx context.Context, id, from string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM leaves WHERE id = $1 AND status = $2", id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.missOrConflict(ctx, id)
	}
	return nil
}

// missOrConflict explains a guarded write that touched no row.
func (s *Store) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	if err := s.DB.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM leaves WHERE id = $1)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidState
}
