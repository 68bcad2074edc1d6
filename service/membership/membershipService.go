package membershipsvc

import (
	"context"
	"errors"
	"strings"

	"bagrental/model"
	profilerepo "bagrental/repository/profile"
	"bagrental/util/database"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("profile not found")
	ErrInvalidPlan = errors.New("plan must be essentiel, signature or prive")
	ErrBadStatus   = errors.New("invalid membership status")
)

type Shipping = profilerepo.Shipping

type Repo interface {
	ByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	UpdateShipping(ctx context.Context, userID uuid.UUID, s Shipping) error
	SetPendingPlan(ctx context.Context, userID uuid.UUID, plan model.MembershipTier) error
	SetMembership(ctx context.Context, userID uuid.UUID, tier model.MembershipTier, status model.MembershipStatus) error
	SetIdentityVerified(ctx context.Context, userID uuid.UUID, verified bool) error
}

type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, s Shipping) (*model.Profile, error)
	StorePendingPlan(ctx context.Context, userID uuid.UUID, plan model.MembershipTier) (*model.Profile, error)
	// UpdateMembership is reserved to admins and the payment webhook.
	UpdateMembership(ctx context.Context, userID uuid.UUID, tier model.MembershipTier, status model.MembershipStatus) (*model.Profile, error)
	SetIdentityVerified(ctx context.Context, userID uuid.UUID, verified bool) error
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func notFound(err error) error {
	if database.IsNoRows(err) {
		return ErrNotFound
	}
	return err
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	p, err := s.r.ByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, sh Shipping) (*model.Profile, error) {
	sh.FullName = strings.TrimSpace(sh.FullName)
	sh.Phone = strings.TrimSpace(sh.Phone)
	sh.AddressLine1 = strings.TrimSpace(sh.AddressLine1)
	sh.AddressLine2 = strings.TrimSpace(sh.AddressLine2)
	sh.City = strings.TrimSpace(sh.City)
	sh.PostalCode = strings.TrimSpace(sh.PostalCode)
	sh.Country = strings.TrimSpace(sh.Country)
	if err := s.r.UpdateShipping(ctx, userID, sh); err != nil {
		return nil, notFound(err)
	}
	return s.Profile(ctx, userID)
}

func (s *service) StorePendingPlan(ctx context.Context, userID uuid.UUID, plan model.MembershipTier) (*model.Profile, error) {
	if !plan.Valid() {
		return nil, ErrInvalidPlan
	}
	if err := s.r.SetPendingPlan(ctx, userID, plan); err != nil {
		return nil, notFound(err)
	}
	return s.Profile(ctx, userID)
}

func (s *service) UpdateMembership(ctx context.Context, userID uuid.UUID, tier model.MembershipTier, status model.MembershipStatus) (*model.Profile, error) {
	if !status.Valid() {
		return nil, ErrBadStatus
	}
	if status == model.MembershipActive && !tier.Valid() {
		return nil, ErrInvalidPlan
	}
	if tier != "" && !tier.Valid() {
		return nil, ErrInvalidPlan
	}
	if err := s.r.SetMembership(ctx, userID, tier, status); err != nil {
		return nil, notFound(err)
	}
	return s.Profile(ctx, userID)
}

func (s *service) SetIdentityVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	return notFound(s.r.SetIdentityVerified(ctx, userID, verified))
}

func (s *service) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	p, err := s.r.ByUserID(ctx, userID)
	if database.IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Role == model.RoleAdmin, nil
}
