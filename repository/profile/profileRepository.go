package profilerepo

import (
	"context"
	"fmt"

	"bagrental/model"
	"bagrental/util/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Shipping is the member-editable part of a profile.
type Shipping struct {
	FullName     string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	PostalCode   string
	Country      string
}

type Repo interface {
	ByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	UpdateShipping(ctx context.Context, userID uuid.UUID, s Shipping) error
	SetPendingPlan(ctx context.Context, userID uuid.UUID, plan model.MembershipTier) error
	SetMembership(ctx context.Context, userID uuid.UUID, tier model.MembershipTier, status model.MembershipStatus) error
	SetIdentityVerified(ctx context.Context, userID uuid.UUID, verified bool) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) ByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	const q = `
		SELECT user_id, full_name, phone, address_line1, address_line2, city, postal_code, country,
			COALESCE(membership_type, ''), membership_status, COALESCE(pending_plan, ''),
			identity_verified, role, updated_at
		FROM profiles
		WHERE user_id = $1`
	var p model.Profile
	err := r.db.Q(ctx).QueryRow(ctx, q, userID).Scan(
		&p.UserID, &p.FullName, &p.Phone, &p.AddressLine1, &p.AddressLine2, &p.City, &p.PostalCode, &p.Country,
		&p.MembershipType, &p.MembershipStatus, &p.PendingPlan,
		&p.IdentityVerified, &p.Role, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) UpdateShipping(ctx context.Context, userID uuid.UUID, s Shipping) error {
	const q = `
		UPDATE profiles
		SET full_name = $2, phone = $3, address_line1 = $4, address_line2 = $5,
			city = $6, postal_code = $7, country = $8, updated_at = NOW()
		WHERE user_id = $1`
	return r.exec(ctx, "update shipping", q,
		userID, s.FullName, s.Phone, s.AddressLine1, s.AddressLine2, s.City, s.PostalCode, s.Country)
}

// SetPendingPlan records the plan being paid for. An active member keeps the
// current plan until the payment lands.
func (r *repo) SetPendingPlan(ctx context.Context, userID uuid.UUID, plan model.MembershipTier) error {
	const q = `
		UPDATE profiles
		SET pending_plan = $2,
			membership_status = CASE WHEN membership_status = 'active' THEN 'active' ELSE 'pending' END,
			updated_at = NOW()
		WHERE user_id = $1`
	return r.exec(ctx, "set pending plan", q, userID, string(plan))
}

// SetMembership clears the pending plan once the membership is active.
func (r *repo) SetMembership(ctx context.Context, userID uuid.UUID, tier model.MembershipTier, status model.MembershipStatus) error {
	const q = `
		UPDATE profiles
		SET membership_type = NULLIF($2, ''),
			membership_status = $3,
			pending_plan = CASE WHEN $3 = 'active' THEN NULL ELSE pending_plan END,
			updated_at = NOW()
		WHERE user_id = $1`
	return r.exec(ctx, "set membership", q, userID, string(tier), string(status))
}

func (r *repo) SetIdentityVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	return r.exec(ctx, "set identity", `
		UPDATE profiles SET identity_verified = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, verified)
}

func (r *repo) exec(ctx context.Context, op, q string, args ...any) error {
	tag, err := r.db.Q(ctx).Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
