package reservation

import (
	"context"
	"fmt"
	"time"

	"bagrental/model"
	"bagrental/util/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repo interface {
	Insert(ctx context.Context, r *model.Reservation) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	LockByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) error
	Cancel(ctx context.Context, id uuid.UUID, reason *string, at time.Time) error

	// History
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)

	ListShipping(ctx context.Context) ([]model.ShippingRow, error)
	ListStalePending(ctx context.Context, before time.Time) ([]uuid.UUID, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

const columns = `
	r.id, r.user_id, r.bag_id, r.start_date, r.end_date, r.status, r.total_amount,
	r.cancellation_reason, r.cancelled_at, r.created_at, r.updated_at`

func scanReservation(row pgx.Row, extra ...any) (*model.Reservation, error) {
	var r model.Reservation
	dest := []any{
		&r.ID, &r.UserID, &r.BagID, &r.StartDate, &r.EndDate, &r.Status, &r.TotalAmount,
		&r.CancellationReason, &r.CancelledAt, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *repo) Insert(ctx context.Context, r *model.Reservation) error {
	const q = `
		INSERT INTO reservations (user_id, bag_id, start_date, end_date, status, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	if r.Status == "" {
		r.Status = model.ReservationPending
	}
	return p.db.Q(ctx).QueryRow(ctx, q,
		r.UserID, r.BagID, r.StartDate, r.EndDate, string(r.Status), r.TotalAmount,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func (p *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return scanReservation(p.db.Q(ctx).QueryRow(ctx, `SELECT `+columns+` FROM reservations r WHERE r.id = $1`, id))
}

// LockByID must run inside a transaction.
func (p *repo) LockByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return scanReservation(p.db.Q(ctx).QueryRow(ctx, `SELECT `+columns+` FROM reservations r WHERE r.id = $1 FOR UPDATE`, id))
}

func (p *repo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) error {
	tag, err := p.db.Q(ctx).Exec(ctx,
		`UPDATE reservations SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (p *repo) Cancel(ctx context.Context, id uuid.UUID, reason *string, at time.Time) error {
	const q = `
		UPDATE reservations
		SET status = 'cancelled',
			cancellation_reason = $2,
			cancelled_at = $3,
			updated_at = NOW()
		WHERE id = $1
		  AND status IN ('pending', 'confirmed')`
	tag, err := p.db.Q(ctx).Exec(ctx, q, id, reason, at)
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// History

func (p *repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error) {
	const q = `
		SELECT ` + columns + `, b.name
		FROM reservations r
		JOIN bags b ON b.id = r.bag_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id`
	rows, err := p.db.Q(ctx).Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		var bagName string
		r, err := scanReservation(rows, &bagName)
		if err != nil {
			return nil, err
		}
		r.BagName = bagName
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (p *repo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	const q = `
		SELECT ` + columns + `, b.name, u.email
		FROM reservations r
		JOIN bags b ON b.id = r.bag_id
		JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at DESC, r.id`
	rows, err := p.db.Q(ctx).Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list all reservations: %w", err)
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		var bagName, email string
		r, err := scanReservation(rows, &bagName, &email)
		if err != nil {
			return nil, err
		}
		r.BagName, r.UserEmail = bagName, email
		out = append(out, *r)
	}
	return out, rows.Err()
}

// ListShipping returns confirmed and active reservations with the member's delivery address.
func (p *repo) ListShipping(ctx context.Context) ([]model.ShippingRow, error) {
	const q = `
		SELECT r.id, r.status, r.start_date, r.end_date, b.name,
			COALESCE(pr.full_name, ''), u.email, COALESCE(pr.phone, ''),
			COALESCE(pr.address_line1, ''), COALESCE(pr.address_line2, ''),
			COALESCE(pr.city, ''), COALESCE(pr.postal_code, ''), COALESCE(pr.country, '')
		FROM reservations r
		JOIN bags b ON b.id = r.bag_id
		JOIN users u ON u.id = r.user_id
		LEFT JOIN profiles pr ON pr.user_id = r.user_id
		WHERE r.status IN ('confirmed', 'active')
		ORDER BY r.start_date, r.id`
	rows, err := p.db.Q(ctx).Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list shipping: %w", err)
	}
	defer rows.Close()

	out := []model.ShippingRow{}
	for rows.Next() {
		var s model.ShippingRow
		if err := rows.Scan(
			&s.ReservationID, &s.Status, &s.StartDate, &s.EndDate, &s.BagName,
			&s.FullName, &s.Email, &s.Phone,
			&s.AddressLine1, &s.AddressLine2, &s.City, &s.PostalCode, &s.Country,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *repo) ListStalePending(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	rows, err := p.db.Q(ctx).Query(ctx,
		`SELECT id FROM reservations WHERE status = 'pending' AND created_at < $1 ORDER BY created_at`, before)
	if err != nil {
		return nil, fmt.Errorf("list stale reservations: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
