package waitlistrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"bagrental/model"
	"bagrental/util/testdb"

	"github.com/stretchr/testify/require"
)

func TestWaitlist_JoinOrderAndNotify(t *testing.T) {
	db := testdb.Open(t)
	r := New(db)
	ctx := context.Background()
	bagID := testdb.Bag(t, db, "Kelly 28", "signature")

	first := &model.WaitlistEntry{BagID: bagID, UserName: "Ana", Email: "ana@example.com"}
	require.NoError(t, r.Insert(ctx, first))
	second := &model.WaitlistEntry{BagID: bagID, UserName: "Bea", Email: "bea@example.com"}
	require.NoError(t, r.Insert(ctx, second))

	// same email in another case is still a duplicate
	err := r.Insert(ctx, &model.WaitlistEntry{BagID: bagID, Email: "ANA@example.com"})
	require.True(t, errors.Is(err, ErrDuplicate))

	rows, err := r.ListByBag(ctx, bagID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	pos, err := r.Position(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, 2, pos)

	err = db.WithTx(ctx, func(ctx context.Context) error {
		e, err := r.FirstPending(ctx, bagID)
		if err != nil {
			return err
		}
		require.Equal(t, first.ID, e.ID)
		return r.MarkNotified(ctx, e.ID, time.Now())
	})
	require.NoError(t, err)

	pos, err = r.Position(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, 1, pos)

	counts, err := r.CountsByBag(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, counts[bagID])

	ok, err := r.Delete(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.Delete(ctx, second.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWaitlist_RejoinAfterNotified(t *testing.T) {
	db := testdb.Open(t)
	r := New(db)
	ctx := context.Background()
	bagID := testdb.Bag(t, db, "Birkin 30", "prive")

	e := &model.WaitlistEntry{BagID: bagID, UserName: "Ana", Email: "ana@example.com"}
	require.NoError(t, r.Insert(ctx, e))
	require.NoError(t, r.MarkNotified(ctx, e.ID, time.Now()))

	again := &model.WaitlistEntry{BagID: bagID, UserName: "Ana", Email: "Ana@Example.com"}
	require.NoError(t, r.Insert(ctx, again))

	pos, err := r.Position(ctx, again.ID)
	require.NoError(t, err)
	require.Equal(t, 1, pos)

	// the live entry still blocks a second join
	err = r.Insert(ctx, &model.WaitlistEntry{BagID: bagID, Email: "ana@example.com"})
	require.True(t, errors.Is(err, ErrDuplicate))

	counts, err := r.CountsByBag(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, counts[bagID])
}
