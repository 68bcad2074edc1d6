package membershipsvc

import (
	"context"
	"testing"

	"bagrental/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type memRepo struct{ m map[uuid.UUID]*model.Profile }

var _ Repo = (*memRepo)(nil)

func (r *memRepo) get(id uuid.UUID) (*model.Profile, error) {
	p, ok := r.m[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (r *memRepo) ByUserID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	p, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) UpdateShipping(_ context.Context, id uuid.UUID, s Shipping) error {
	p, err := r.get(id)
	if err != nil {
		return err
	}
	p.FullName, p.City, p.PostalCode = s.FullName, s.City, s.PostalCode
	return nil
}

func (r *memRepo) SetPendingPlan(_ context.Context, id uuid.UUID, plan model.MembershipTier) error {
	p, err := r.get(id)
	if err != nil {
		return err
	}
	p.PendingPlan = plan
	if p.MembershipStatus != model.MembershipActive {
		p.MembershipStatus = model.MembershipPending
	}
	return nil
}

func (r *memRepo) SetMembership(_ context.Context, id uuid.UUID, tier model.MembershipTier, st model.MembershipStatus) error {
	p, err := r.get(id)
	if err != nil {
		return err
	}
	p.MembershipType, p.MembershipStatus = tier, st
	if st == model.MembershipActive {
		p.PendingPlan = ""
	}
	return nil
}

func (r *memRepo) SetIdentityVerified(_ context.Context, id uuid.UUID, v bool) error {
	p, err := r.get(id)
	if err != nil {
		return err
	}
	p.IdentityVerified = v
	return nil
}

func newSvc() (Service, uuid.UUID) {
	id := uuid.New()
	return New(&memRepo{m: map[uuid.UUID]*model.Profile{
		id: {UserID: id, MembershipStatus: model.MembershipFree, Role: model.RoleUser},
	}}), id
}

func TestStorePendingPlanThenActivate(t *testing.T) {
	svc, id := newSvc()
	ctx := context.Background()

	p, err := svc.StorePendingPlan(ctx, id, model.TierSignature)
	require.NoError(t, err)
	require.Equal(t, model.MembershipPending, p.MembershipStatus)
	require.Equal(t, model.TierSignature, p.PendingPlan)
	require.False(t, p.Covers(model.TierEssentiel))

	p, err = svc.UpdateMembership(ctx, id, model.TierSignature, model.MembershipActive)
	require.NoError(t, err)
	require.True(t, p.Covers(model.TierSignature))
	require.False(t, p.Covers(model.TierPrive))
	require.Empty(t, p.PendingPlan)
}

func TestStorePendingPlan_ActiveMemberKeepsPlan(t *testing.T) {
	svc, id := newSvc()
	ctx := context.Background()
	_, err := svc.UpdateMembership(ctx, id, model.TierSignature, model.MembershipActive)
	require.NoError(t, err)

	p, err := svc.StorePendingPlan(ctx, id, model.TierPrive)
	require.NoError(t, err)
	require.Equal(t, model.MembershipActive, p.MembershipStatus)
	require.Equal(t, model.TierPrive, p.PendingPlan)
	require.True(t, p.Covers(model.TierSignature))
	require.False(t, p.Covers(model.TierPrive))
}

func TestValidation(t *testing.T) {
	svc, id := newSvc()
	ctx := context.Background()

	_, err := svc.StorePendingPlan(ctx, id, "gold")
	require.ErrorIs(t, err, ErrInvalidPlan)

	_, err = svc.UpdateMembership(ctx, id, "", model.MembershipActive)
	require.ErrorIs(t, err, ErrInvalidPlan)

	_, err = svc.UpdateMembership(ctx, id, model.TierPrive, "vip")
	require.ErrorIs(t, err, ErrBadStatus)

	_, err = svc.Profile(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfileTrims(t *testing.T) {
	svc, id := newSvc()
	p, err := svc.UpdateProfile(context.Background(), id, Shipping{FullName: " Ana ", City: " Lyon ", PostalCode: "69001"})
	require.NoError(t, err)
	require.Equal(t, "Ana", p.FullName)
	require.Equal(t, "Lyon", p.City)
}

func TestIsAdmin(t *testing.T) {
	svc, id := newSvc()
	ok, err := svc.IsAdmin(context.Background(), id)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.IsAdmin(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, ok)
}
