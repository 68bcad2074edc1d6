package reservation

import (
	"context"
	"errors"
	"strings"
	"time"

	"bagrental/model"
	waitlistsvc "bagrental/service/waitlist"
	"bagrental/util/clock"
	"bagrental/util/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// errors used by controllers

type ErrCode string

const (
	ErrBagNotFound       ErrCode = "BAG_NOT_FOUND"
	ErrBagUnavailable    ErrCode = "BAG_UNAVAILABLE"
	ErrMembership        ErrCode = "MEMBERSHIP"
	ErrInvalidDates      ErrCode = "INVALID_DATES"
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrNotOwner          ErrCode = "NOT_OWNER"
	ErrNotCancellable    ErrCode = "NOT_CANCELLABLE"
	ErrIllegalTransition ErrCode = "ILLEGAL_TRANSITION"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

var (
	errNoMembership = codedError{code: ErrMembership, msg: "Necesitas una membresía activa para reservar este bolso"}
	errTierTooLow   = codedError{code: ErrMembership, msg: "Tu membresía no incluye este bolso; mejora tu plan para reservarlo"}
)

const ExpiredReason = "expired"

type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Repo interface {
	Insert(ctx context.Context, r *model.Reservation) error
	LockByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) error
	Cancel(ctx context.Context, id uuid.UUID, reason *string, at time.Time) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)
	ListStalePending(ctx context.Context, before time.Time) ([]uuid.UUID, error)
}

type BagRepo interface {
	LockByID(ctx context.Context, id uuid.UUID) (*model.Bag, error)
}

type ProfileRepo interface {
	ByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
}

// Availability moves bags between statuses; see the waitlist service.
type Availability interface {
	Transition(ctx context.Context, bagID uuid.UUID, status model.BagStatus, renterID *uuid.UUID) (*waitlistsvc.StatusChange, error)
	Dispatch(ctx context.Context, ch *waitlistsvc.StatusChange) error
}

type CreateInput struct {
	UserID    uuid.UUID
	BagID     uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

type CancelInput struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Reason string
	Admin  bool
}

type Service interface {
	// Create holds an available bag for a member whose plan covers its tier.
	Create(ctx context.Context, in CreateInput) (*model.Reservation, error)
	Cancel(ctx context.Context, in CancelInput) (*model.Reservation, error)
	MyReservations(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error)

	// admin
	All(ctx context.Context) ([]model.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) (*model.Reservation, error)

	// ReleaseExpired cancels pending reservations older than ttl and frees their bags.
	ReleaseExpired(ctx context.Context, ttl time.Duration) (int, error)
}

type service struct {
	tx       TxRunner
	r        Repo
	bags     BagRepo
	profiles ProfileRepo
	avail    Availability
	clock    clock.Clock
	log      *zap.Logger
}

func New(tx TxRunner, r Repo, bags BagRepo, profiles ProfileRepo, avail Availability, clk clock.Clock, log *zap.Logger) Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{tx: tx, r: r, bags: bags, profiles: profiles, avail: avail, clock: clk, log: log}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *service) Create(ctx context.Context, in CreateInput) (*model.Reservation, error) {
	start, end := dateOnly(in.StartDate), dateOnly(in.EndDate)
	if !start.Before(end) {
		return nil, codedError{code: ErrInvalidDates, msg: "end_date must be after start_date"}
	}
	if start.Before(clock.Today(s.clock)) {
		return nil, codedError{code: ErrInvalidDates, msg: "start_date is in the past"}
	}

	prof, err := s.profiles.ByUserID(ctx, in.UserID)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, errNoMembership
		}
		return nil, err
	}
	if prof.MembershipStatus != model.MembershipActive {
		return nil, errNoMembership
	}

	var (
		res *model.Reservation
		ch  *waitlistsvc.StatusChange
	)
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		bag, err := s.bags.LockByID(ctx, in.BagID)
		if err != nil {
			if database.IsNoRows(err) {
				return makeErr(ErrBagNotFound)
			}
			return err
		}
		if !prof.Covers(bag.MembershipType) {
			return errTierTooLow
		}
		if !bag.CanReserve() {
			return makeErr(ErrBagUnavailable)
		}

		res = &model.Reservation{
			UserID:    in.UserID,
			BagID:     bag.ID,
			StartDate: start,
			EndDate:   end,
			Status:    model.ReservationPending,
			BagName:   bag.Name,
		}
		res.TotalAmount = bag.DailyRate.Mul(decimal.NewFromInt(int64(res.Nights())))
		if err := s.r.Insert(ctx, res); err != nil {
			return err
		}

		ch, err = s.avail.Transition(ctx, bag.ID, model.BagReserved, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = s.avail.Dispatch(ctx, ch)
	return res, nil
}

func (s *service) Cancel(ctx context.Context, in CancelInput) (*model.Reservation, error) {
	var (
		res *model.Reservation
		ch  *waitlistsvc.StatusChange
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		r, err := s.r.LockByID(ctx, in.ID)
		if err != nil {
			if database.IsNoRows(err) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if !in.Admin && r.UserID != in.UserID {
			return makeErr(ErrNotOwner)
		}
		if !r.Status.Cancellable() {
			return codedError{code: ErrNotCancellable, msg: "reservation is " + string(r.Status) + " and cannot be cancelled"}
		}

		now := s.clock.Now()
		var reason *string
		if rs := strings.TrimSpace(in.Reason); rs != "" {
			reason = &rs
		}
		if err := s.r.Cancel(ctx, r.ID, reason, now); err != nil {
			return err
		}
		r.Status, r.CancellationReason, r.CancelledAt = model.ReservationCancelled, reason, &now
		res = r

		bag, err := s.bags.LockByID(ctx, r.BagID)
		if err != nil {
			return err
		}
		if bag.Status == model.BagReserved {
			ch, err = s.avail.Transition(ctx, bag.ID, model.BagAvailable, nil)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	_ = s.avail.Dispatch(ctx, ch)
	return res, nil
}

func (s *service) MyReservations(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error) {
	return s.r.ListByUser(ctx, userID)
}

func (s *service) All(ctx context.Context) ([]model.Reservation, error) {
	return s.r.ListAll(ctx)
}

// UpdateStatus advances a reservation one step. active hands the bag to the
// member; completed puts it back on the shelf.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) (*model.Reservation, error) {
	if status == model.ReservationCancelled {
		return s.Cancel(ctx, CancelInput{ID: id, Admin: true})
	}
	if !status.Valid() {
		return nil, codedError{code: ErrIllegalTransition, msg: "unknown status " + string(status)}
	}

	var (
		res *model.Reservation
		ch  *waitlistsvc.StatusChange
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		r, err := s.r.LockByID(ctx, id)
		if err != nil {
			if database.IsNoRows(err) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		if !r.Status.CanAdvanceTo(status) {
			return codedError{code: ErrIllegalTransition, msg: "cannot move reservation from " + string(r.Status) + " to " + string(status)}
		}
		if err := s.r.UpdateStatus(ctx, r.ID, status); err != nil {
			return err
		}
		r.Status = status
		res = r

		switch status {
		case model.ReservationActive:
			ch, err = s.avail.Transition(ctx, r.BagID, model.BagRented, &r.UserID)
		case model.ReservationCompleted:
			ch, err = s.avail.Transition(ctx, r.BagID, model.BagAvailable, nil)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = s.avail.Dispatch(ctx, ch)
	return res, nil
}

func (s *service) ReleaseExpired(ctx context.Context, ttl time.Duration) (int, error) {
	ids, err := s.r.ListStalePending(ctx, s.clock.Now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		_, err := s.Cancel(ctx, CancelInput{ID: id, Reason: ExpiredReason, Admin: true})
		switch Code(err) {
		case "":
			if err != nil {
				return n, err
			}
			n++
		case ErrNotCancellable, ErrNotFound:
		default:
			return n, err
		}
	}
	return n, nil
}
