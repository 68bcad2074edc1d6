package bagrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bagrental/model"
	"bagrental/util/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Filter struct {
	Tier   model.MembershipTier
	Status model.BagStatus
}

type Repo interface {
	List(ctx context.Context, f Filter) ([]model.Bag, error)
	ByID(ctx context.Context, id uuid.UUID) (*model.Bag, error)
	ByName(ctx context.Context, name string) (*model.Bag, error)
	LockByID(ctx context.Context, id uuid.UUID) (*model.Bag, error)

	Create(ctx context.Context, b *model.Bag) error
	Update(ctx context.Context, b *model.Bag) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.BagStatus, renterID *uuid.UUID) error

	// NFC
	AssignNFC(ctx context.Context, id uuid.UUID, uid string, at time.Time) (bool, error)
	RecordScan(ctx context.Context, id uuid.UUID, at time.Time) error
	BlockNFC(ctx context.Context, id uuid.UUID, reason string) error
	UnblockNFC(ctx context.Context, id uuid.UUID) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

const bagColumns = `
	b.id, b.name, b.brand, b.description, b.images, b.membership_type, b.status,
	b.daily_rate, b.total_rentals, b.current_renter_id,
	b.nfc_uid, b.nfc_assigned_at, b.nfc_last_scan_at, b.nfc_blocked, b.nfc_block_reason, b.nfc_failed_scans,
	b.created_at, b.updated_at`

func scanBag(row pgx.Row) (*model.Bag, error) {
	var b model.Bag
	err := row.Scan(
		&b.ID, &b.Name, &b.Brand, &b.Description, &b.Images, &b.MembershipType, &b.Status,
		&b.DailyRate, &b.TotalRentals, &b.CurrentRenterID,
		&b.NFC.UID, &b.NFC.AssignedAt, &b.NFC.LastScanAt, &b.NFC.Blocked, &b.NFC.BlockReason, &b.NFC.FailedScans,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.Bag, error) {
	var (
		where []string
		args  []any
	)
	if f.Tier != "" {
		args = append(args, string(f.Tier))
		where = append(where, fmt.Sprintf("b.membership_type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("b.status = $%d", len(args)))
	}

	q := `SELECT ` + bagColumns + ` FROM bags b`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY b.created_at DESC, b.id`

	rows, err := r.db.Q(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list bags: %w", err)
	}
	defer rows.Close()

	out := []model.Bag{}
	for rows.Next() {
		b, err := scanBag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Bag, error) {
	return scanBag(r.db.Q(ctx).QueryRow(ctx, `SELECT `+bagColumns+` FROM bags b WHERE b.id = $1`, id))
}

func (r *repo) ByName(ctx context.Context, name string) (*model.Bag, error) {
	return scanBag(r.db.Q(ctx).QueryRow(ctx,
		`SELECT `+bagColumns+` FROM bags b WHERE lower(b.name) = lower($1)`, strings.TrimSpace(name)))
}

// LockByID must run inside a transaction.
func (r *repo) LockByID(ctx context.Context, id uuid.UUID) (*model.Bag, error) {
	return scanBag(r.db.Q(ctx).QueryRow(ctx, `SELECT `+bagColumns+` FROM bags b WHERE b.id = $1 FOR UPDATE`, id))
}

func (r *repo) Create(ctx context.Context, b *model.Bag) error {
	if b.Images == nil {
		b.Images = []string{}
	}
	if b.Status == "" {
		b.Status = model.BagAvailable
	}
	const q = `
		INSERT INTO bags (name, brand, description, images, membership_type, status, daily_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, total_rentals, created_at, updated_at`
	return r.db.Q(ctx).QueryRow(ctx, q,
		b.Name, b.Brand, b.Description, b.Images, string(b.MembershipType), string(b.Status), b.DailyRate,
	).Scan(&b.ID, &b.TotalRentals, &b.CreatedAt, &b.UpdatedAt)
}

func (r *repo) Update(ctx context.Context, b *model.Bag) error {
	const q = `
		UPDATE bags
		SET name = $2, brand = $3, description = $4, images = $5,
			membership_type = $6, daily_rate = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.db.Q(ctx).QueryRow(ctx, q,
		b.ID, b.Name, b.Brand, b.Description, b.Images, string(b.MembershipType), b.DailyRate,
	).Scan(&b.UpdatedAt)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Q(ctx).Exec(ctx, `DELETE FROM bags WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete bag: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetStatus writes status and renter together so the rented/renter check holds.
// Entering rented counts one rental.
func (r *repo) SetStatus(ctx context.Context, id uuid.UUID, status model.BagStatus, renterID *uuid.UUID) error {
	const q = `
		UPDATE bags
		SET total_rentals = total_rentals + CASE WHEN $2 = 'rented' AND status <> 'rented' THEN 1 ELSE 0 END,
			status = $2,
			current_renter_id = $3,
			updated_at = NOW()
		WHERE id = $1`
	if status != model.BagRented {
		renterID = nil
	}
	tag, err := r.db.Q(ctx).Exec(ctx, q, id, string(status), renterID)
	if err != nil {
		return fmt.Errorf("set bag status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AssignNFC binds uid once. It returns false when the bag already carries a tag.
func (r *repo) AssignNFC(ctx context.Context, id uuid.UUID, uid string, at time.Time) (bool, error) {
	const q = `
		UPDATE bags
		SET nfc_uid = $2, nfc_assigned_at = $3, updated_at = NOW()
		WHERE id = $1 AND nfc_uid IS NULL`
	tag, err := r.db.Q(ctx).Exec(ctx, q, id, uid, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) RecordScan(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Q(ctx).Exec(ctx, `UPDATE bags SET nfc_last_scan_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *repo) BlockNFC(ctx context.Context, id uuid.UUID, reason string) error {
	const q = `
		UPDATE bags
		SET nfc_blocked = TRUE, nfc_block_reason = $2,
			nfc_failed_scans = nfc_failed_scans + 1, updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.Q(ctx).Exec(ctx, q, id, reason)
	return err
}

func (r *repo) UnblockNFC(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE bags
		SET nfc_blocked = FALSE, nfc_block_reason = NULL, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.db.Q(ctx).Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
