package waitlistrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bagrental/model"
	"bagrental/util/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDuplicate is returned when the email is already in line for the bag.
var ErrDuplicate = errors.New("already on waitlist")

type Repo interface {
	Insert(ctx context.Context, e *model.WaitlistEntry) error
	Position(ctx context.Context, entryID int64) (int, error)
	ListByBag(ctx context.Context, bagID uuid.UUID) ([]model.WaitlistEntry, error)
	CountsByBag(ctx context.Context) (map[uuid.UUID]int, error)

	FirstPending(ctx context.Context, bagID uuid.UUID) (*model.WaitlistEntry, error)
	LockByID(ctx context.Context, id int64) (*model.WaitlistEntry, error)
	MarkNotified(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

const columns = `id, bag_id, user_id, user_name, email, added_date, notified, notified_at`

func scanEntry(row pgx.Row) (*model.WaitlistEntry, error) {
	var e model.WaitlistEntry
	if err := row.Scan(&e.ID, &e.BagID, &e.UserID, &e.UserName, &e.Email, &e.AddedDate, &e.Notified, &e.NotifiedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// Insert relies on the partial (bag_id, lower(email)) unique index over un-notified
// rows, so two concurrent joins cannot both succeed and a notified member can rejoin.
func (r *repo) Insert(ctx context.Context, e *model.WaitlistEntry) error {
	const q = `
		INSERT INTO waitlist (bag_id, user_id, user_name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, added_date, notified`
	err := r.db.Q(ctx).QueryRow(ctx, q, e.BagID, e.UserID, e.UserName, e.Email).
		Scan(&e.ID, &e.AddedDate, &e.Notified)
	if _, dup := database.UniqueViolation(err); dup {
		return ErrDuplicate
	}
	return err
}

// Position is the 1-based place of the entry among the bag's un-notified entries.
func (r *repo) Position(ctx context.Context, entryID int64) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM waitlist w
		JOIN waitlist me ON me.id = $1 AND me.bag_id = w.bag_id
		WHERE NOT w.notified
		  AND (w.added_date, w.id) <= (me.added_date, me.id)`
	var n int
	if err := r.db.Q(ctx).QueryRow(ctx, q, entryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("waitlist position: %w", err)
	}
	return n, nil
}

func (r *repo) ListByBag(ctx context.Context, bagID uuid.UUID) ([]model.WaitlistEntry, error) {
	rows, err := r.db.Q(ctx).Query(ctx,
		`SELECT `+columns+` FROM waitlist WHERE bag_id = $1 ORDER BY added_date, id`, bagID)
	if err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}
	defer rows.Close()

	out := []model.WaitlistEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// CountsByBag counts the un-notified entries per bag.
func (r *repo) CountsByBag(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.db.Q(ctx).Query(ctx, `SELECT bag_id, COUNT(*) FROM waitlist WHERE NOT notified GROUP BY bag_id`)
	if err != nil {
		return nil, fmt.Errorf("count waitlist: %w", err)
	}
	defer rows.Close()

	out := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			id uuid.UUID
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// FirstPending locks the earliest un-notified entry for the bag. SKIP LOCKED keeps
// two concurrent releases from picking the same entry.
func (r *repo) FirstPending(ctx context.Context, bagID uuid.UUID) (*model.WaitlistEntry, error) {
	const q = `
		SELECT ` + columns + `
		FROM waitlist
		WHERE bag_id = $1 AND NOT notified
		ORDER BY added_date, id
		FOR UPDATE SKIP LOCKED
		LIMIT 1`
	return scanEntry(r.db.Q(ctx).QueryRow(ctx, q, bagID))
}

func (r *repo) LockByID(ctx context.Context, id int64) (*model.WaitlistEntry, error) {
	return scanEntry(r.db.Q(ctx).QueryRow(ctx, `SELECT `+columns+` FROM waitlist WHERE id = $1 FOR UPDATE`, id))
}

func (r *repo) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Q(ctx).Exec(ctx,
		`UPDATE waitlist SET notified = TRUE, notified_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Q(ctx).Exec(ctx, `DELETE FROM waitlist WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete waitlist entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
