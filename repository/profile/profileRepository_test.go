package profilerepo

import (
	"context"
	"testing"

	"bagrental/model"
	"bagrental/util/database"
	"bagrental/util/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSetMembership(t *testing.T) {
	db := testdb.Open(t)
	r := New(db)
	ctx := context.Background()
	id := testdb.Member(t, db, "ana@example.com")

	p, err := r.ByUserID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.MembershipFree, p.MembershipStatus)
	require.Empty(t, p.MembershipType)

	require.NoError(t, r.SetPendingPlan(ctx, id, model.TierSignature))
	p, err = r.ByUserID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.MembershipPending, p.MembershipStatus)
	require.Equal(t, model.TierSignature, p.PendingPlan)

	// pending plan survives anything but activation
	require.NoError(t, r.SetMembership(ctx, id, "", model.MembershipCancelled))
	p, err = r.ByUserID(ctx, id)
	require.NoError(t, err)
	require.Empty(t, p.MembershipType)
	require.Equal(t, model.TierSignature, p.PendingPlan)

	require.NoError(t, r.SetMembership(ctx, id, model.TierSignature, model.MembershipActive))
	p, err = r.ByUserID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.TierSignature, p.MembershipType)
	require.Equal(t, model.MembershipActive, p.MembershipStatus)
	require.Empty(t, p.PendingPlan)

	require.True(t, database.IsNoRows(r.SetMembership(ctx, uuid.New(), model.TierPrive, model.MembershipActive)))
}

func TestSetPendingPlan_ActiveMemberStaysActive(t *testing.T) {
	db := testdb.Open(t)
	r := New(db)
	ctx := context.Background()
	id := testdb.Member(t, db, "bea@example.com")

	require.NoError(t, r.SetMembership(ctx, id, model.TierEssentiel, model.MembershipActive))
	require.NoError(t, r.SetPendingPlan(ctx, id, model.TierPrive))

	p, err := r.ByUserID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.MembershipActive, p.MembershipStatus)
	require.Equal(t, model.TierEssentiel, p.MembershipType)
	require.Equal(t, model.TierPrive, p.PendingPlan)
	require.True(t, p.Covers(model.TierEssentiel))
}

func TestUpdateShipping_UnknownUser(t *testing.T) {
	db := testdb.Open(t)
	r := New(db)
	err := r.UpdateShipping(context.Background(), uuid.New(), Shipping{FullName: "Nobody"})
	require.True(t, database.IsNoRows(err))
}
