package adminsvc

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"bagrental/model"
	bagrepo "bagrental/repository/bag"
	waitlistsvc "bagrental/service/waitlist"
	"bagrental/util/clock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type fakeBags struct {
	m         map[uuid.UUID]*model.Bag
	createErr error
}

var _ BagRepo = (*fakeBags)(nil)

func (f *fakeBags) List(context.Context, bagrepo.Filter) ([]model.Bag, error) {
	var out []model.Bag
	for _, b := range f.m {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBags) ByID(_ context.Context, id uuid.UUID) (*model.Bag, error) {
	b, ok := f.m[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBags) Create(_ context.Context, b *model.Bag) error {
	if f.createErr != nil {
		return f.createErr
	}
	b.ID = uuid.New()
	cp := *b
	f.m[b.ID] = &cp
	return nil
}

func (f *fakeBags) Update(_ context.Context, b *model.Bag) error {
	cp := *b
	f.m[b.ID] = &cp
	return nil
}

func (f *fakeBags) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.m[id]
	delete(f.m, id)
	return ok, nil
}

func (f *fakeBags) AssignNFC(_ context.Context, id uuid.UUID, uid string, at time.Time) (bool, error) {
	b, ok := f.m[id]
	if !ok || b.NFC.UID != nil {
		return false, nil
	}
	b.NFC.UID, b.NFC.AssignedAt = &uid, &at
	return true, nil
}

func (f *fakeBags) RecordScan(_ context.Context, id uuid.UUID, at time.Time) error {
	f.m[id].NFC.LastScanAt = &at
	return nil
}

func (f *fakeBags) BlockNFC(_ context.Context, id uuid.UUID, reason string) error {
	b := f.m[id]
	b.NFC.Blocked, b.NFC.BlockReason = true, &reason
	b.NFC.FailedScans++
	return nil
}

func (f *fakeBags) UnblockNFC(_ context.Context, id uuid.UUID) error {
	b := f.m[id]
	b.NFC.Blocked, b.NFC.BlockReason = false, nil
	return nil
}

type fakeWaitlist struct{ counts map[uuid.UUID]int }

func (f fakeWaitlist) CountsByBag(context.Context) (map[uuid.UUID]int, error) { return f.counts, nil }

type fakeShipping struct{ rows []model.ShippingRow }

func (f fakeShipping) ListShipping(context.Context) ([]model.ShippingRow, error) { return f.rows, nil }

type fakeAvail struct{ bags *fakeBags }

func (f fakeAvail) Transition(_ context.Context, id uuid.UUID, st model.BagStatus, renter *uuid.UUID) (*waitlistsvc.StatusChange, error) {
	b := f.bags.m[id]
	if !b.Status.CanTransitionTo(st) {
		return nil, errIllegal
	}
	ch := &waitlistsvc.StatusChange{BagID: id, From: b.Status, To: st}
	b.Status, b.CurrentRenterID = st, renter
	return ch, nil
}

func (fakeAvail) Dispatch(context.Context, *waitlistsvc.StatusChange) error { return nil }

var errIllegal = codedError{code: "ILLEGAL", msg: "illegal"}

func newSvc(t *testing.T, rows ...model.ShippingRow) (Service, *fakeBags) {
	t.Helper()
	bags := &fakeBags{m: map[uuid.UUID]*model.Bag{}}
	svc := New(fakeTx{}, bags, fakeWaitlist{counts: map[uuid.UUID]int{}}, fakeShipping{rows: rows},
		fakeAvail{bags: bags}, nil, clock.NewFixed(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)), nil)
	return svc, bags
}

func addBag(bags *fakeBags, st model.BagStatus) uuid.UUID {
	id := uuid.New()
	bags.m[id] = &model.Bag{ID: id, Name: "Bag " + id.String()[:4], MembershipType: model.TierEssentiel, Status: st}
	return id
}

func TestNormalizeUID(t *testing.T) {
	uid, ok := NormalizeUID(" 04:a2:2b:1c ")
	require.True(t, ok)
	require.Equal(t, "04A22B1C", uid)

	_, ok = NormalizeUID("04a2")
	require.False(t, ok)
	_, ok = NormalizeUID("zz-zz-zz-zz")
	require.False(t, ok)
}

func TestCreateBag(t *testing.T) {
	svc, bags := newSvc(t)
	ctx := context.Background()

	b, err := svc.CreateBag(ctx, BagInput{
		Name:           "  Kelly 28 ",
		Description:    `<p>Box calf</p><script>alert(1)</script>`,
		MembershipType: model.TierSignature,
		DailyRate:      decimal.NewFromInt(40),
	})
	require.NoError(t, err)
	require.Equal(t, "Kelly 28", b.Name)
	require.Equal(t, model.BagAvailable, b.Status)
	require.NotContains(t, b.Description, "script")
	require.Len(t, bags.m, 1)

	_, err = svc.CreateBag(ctx, BagInput{Name: "x", MembershipType: "gold"})
	require.Equal(t, ErrBadInput, Code(err))

	_, err = svc.CreateBag(ctx, BagInput{Name: "x", MembershipType: model.TierPrive, DailyRate: decimal.NewFromInt(-1)})
	require.Equal(t, ErrBadInput, Code(err))

	bags.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "bags_name_key"}
	_, err = svc.CreateBag(ctx, BagInput{Name: "Kelly 28", MembershipType: model.TierPrive})
	require.Equal(t, ErrNameTaken, Code(err))
}

func TestUpdateBag_StatusAndFields(t *testing.T) {
	svc, bags := newSvc(t)
	ctx := context.Background()
	id := addBag(bags, model.BagAvailable)

	name := "Constance"
	st := model.BagMaintenance
	b, err := svc.UpdateBag(ctx, id, BagPatch{Name: &name, Status: &st})
	require.NoError(t, err)
	require.Equal(t, "Constance", b.Name)
	require.Equal(t, model.BagMaintenance, bags.m[id].Status)

	st = model.BagRented
	_, err = svc.UpdateBag(ctx, id, BagPatch{Status: &st})
	require.Error(t, err)

	_, err = svc.UpdateBag(ctx, uuid.New(), BagPatch{Name: &name})
	require.Equal(t, ErrNotFound, Code(err))
}

func TestDeleteBag(t *testing.T) {
	svc, bags := newSvc(t)
	id := addBag(bags, model.BagAvailable)
	require.NoError(t, svc.DeleteBag(context.Background(), id))
	require.Equal(t, ErrNotFound, Code(svc.DeleteBag(context.Background(), id)))
}

func TestAssignNFC_OneTime(t *testing.T) {
	svc, bags := newSvc(t)
	ctx := context.Background()
	id := addBag(bags, model.BagAvailable)

	b, err := svc.AssignNFC(ctx, id, "04:a2:2b:1c")
	require.NoError(t, err)
	require.Equal(t, "04A22B1C", *b.NFC.UID)

	_, err = svc.AssignNFC(ctx, id, "04A22B1D")
	require.Equal(t, ErrNFCAssigned, Code(err))
	require.Equal(t, "04A22B1C", *bags.m[id].NFC.UID)

	_, err = svc.AssignNFC(ctx, id, "nope")
	require.Equal(t, ErrInvalidUID, Code(err))

	_, err = svc.AssignNFC(ctx, uuid.New(), "04A22B1C")
	require.Equal(t, ErrNotFound, Code(err))
}

func TestScanNFC(t *testing.T) {
	svc, bags := newSvc(t)
	ctx := context.Background()
	id := addBag(bags, model.BagAvailable)

	_, err := svc.ScanNFC(ctx, id, "04A22B1C")
	require.Equal(t, ErrNFCNotAssigned, Code(err))

	_, err = svc.AssignNFC(ctx, id, "04A22B1C")
	require.NoError(t, err)

	res, err := svc.ScanNFC(ctx, id, "04a22b1c")
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.NotNil(t, bags.m[id].NFC.LastScanAt)

	res, err = svc.ScanNFC(ctx, id, "DEADBEEF")
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.True(t, res.Blocked)
	require.True(t, bags.m[id].NFC.Blocked)
	require.Equal(t, 1, bags.m[id].NFC.FailedScans)

	res, err = svc.ScanNFC(ctx, id, "04A22B1C")
	require.Equal(t, ErrNFCBlocked, Code(err))
	require.True(t, res.Blocked)
	require.Equal(t, mismatchReason, res.Reason)

	require.NoError(t, svc.UnblockNFC(ctx, id))
	require.Equal(t, ErrNFCNotBlocked, Code(svc.UnblockNFC(ctx, id)))

	res, err = svc.ScanNFC(ctx, id, "04A22B1C")
	require.NoError(t, err)
	require.True(t, res.Valid)
}

func TestInventory_Counts(t *testing.T) {
	bags := &fakeBags{m: map[uuid.UUID]*model.Bag{}}
	id := addBag(bags, model.BagRented)
	uid := "04A22B1C"
	bags.m[id].NFC.UID = &uid
	svc := New(fakeTx{}, bags, fakeWaitlist{counts: map[uuid.UUID]int{id: 3}}, fakeShipping{}, fakeAvail{bags: bags}, nil, nil, nil)

	items, err := svc.Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 3, items[0].WaitlistCount)
	require.Equal(t, "04A22B1C", *items[0].NFC.UID)
}

func TestShippingCSV(t *testing.T) {
	rows := []model.ShippingRow{
		{ReservationID: uuid.New(), Status: model.ReservationConfirmed, BagName: `Kelly "28"`, FullName: "Ana", City: "Paris, 8e"},
		{ReservationID: uuid.New(), Status: model.ReservationActive, BagName: "Speedy", FullName: "Bea"},
	}
	svc, _ := newSvc(t, rows...)

	var buf bytes.Buffer
	require.NoError(t, svc.ShippingCSV(context.Background(), &buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(rows)+1)
	require.True(t, strings.HasPrefix(lines[0], `"reservation_id","status"`))
	require.Contains(t, lines[1], `"Kelly ""28"""`)
	require.Contains(t, lines[1], `"Paris, 8e"`)
	for _, l := range lines {
		require.Equal(t, len(model.ShippingHeader), strings.Count(l, `","`)+1)
		require.True(t, strings.HasPrefix(l, `"`) && strings.HasSuffix(l, `"`))
	}
}
