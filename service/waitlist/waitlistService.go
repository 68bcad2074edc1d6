package waitlistsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bagrental/model"
	"bagrental/repository/cache"
	"bagrental/repository/notifier"
	waitlistrepo "bagrental/repository/waitlist"
	"bagrental/util/clock"
	"bagrental/util/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ErrCode string

const (
	ErrBagNotFound       ErrCode = "BAG_NOT_FOUND"
	ErrEntryNotFound     ErrCode = "ENTRY_NOT_FOUND"
	ErrAlreadyJoined     ErrCode = "ALREADY_JOINED"
	ErrIllegalTransition ErrCode = "ILLEGAL_TRANSITION"
	ErrRenterRequired    ErrCode = "RENTER_REQUIRED"
	ErrBadInput          ErrCode = "BAD_INPUT"
	ErrSendFailed        ErrCode = "SEND_FAILED"
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

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type BagRepo interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.Bag, error)
	ByName(ctx context.Context, name string) (*model.Bag, error)
	LockByID(ctx context.Context, id uuid.UUID) (*model.Bag, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.BagStatus, renterID *uuid.UUID) error
}

type Repo interface {
	Insert(ctx context.Context, e *model.WaitlistEntry) error
	Position(ctx context.Context, entryID int64) (int, error)
	ListByBag(ctx context.Context, bagID uuid.UUID) ([]model.WaitlistEntry, error)
	FirstPending(ctx context.Context, bagID uuid.UUID) (*model.WaitlistEntry, error)
	LockByID(ctx context.Context, id int64) (*model.WaitlistEntry, error)
	MarkNotified(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type JoinInput struct {
	BagName  string
	UserName string
	Email    string
	UserID   *uuid.UUID
}

type Joined struct {
	Entry    model.WaitlistEntry `json:"entry"`
	Position int                 `json:"position"`
}

// StatusChange describes a committed bag transition. Notified is the waitlist
// entry that was flagged, if any; its email goes out in Dispatch.
type StatusChange struct {
	BagID    uuid.UUID            `json:"bag_id"`
	BagName  string               `json:"bag_name"`
	From     model.BagStatus      `json:"from"`
	To       model.BagStatus      `json:"to"`
	Notified *model.WaitlistEntry `json:"notified,omitempty"`
}

type Service interface {
	Join(ctx context.Context, in JoinInput) (*Joined, error)
	List(ctx context.Context, bagID uuid.UUID) ([]model.WaitlistEntry, error)

	// Transition changes the bag status and flags the first waiting entry when the
	// bag becomes available. Callers inside a transaction must call Dispatch after commit.
	Transition(ctx context.Context, bagID uuid.UUID, status model.BagStatus, renterID *uuid.UUID) (*StatusChange, error)
	Dispatch(ctx context.Context, ch *StatusChange) error
	SetBagStatus(ctx context.Context, bagID uuid.UUID, status model.BagStatus, renterID *uuid.UUID) (*StatusChange, error)

	// admin
	Notify(ctx context.Context, entryID int64) (*model.WaitlistEntry, error)
	Remove(ctx context.Context, entryID int64) error
}

type service struct {
	tx    TxRunner
	bags  BagRepo
	r     Repo
	send  notifier.Sender
	cat   cache.Catalog
	clock clock.Clock
	log   *zap.Logger
}

func New(tx TxRunner, bags BagRepo, r Repo, send notifier.Sender, cat cache.Catalog, clk clock.Clock, log *zap.Logger) Service {
	if cat == nil {
		cat = cache.NewNoop()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{tx: tx, bags: bags, r: r, send: send, cat: cat, clock: clk, log: log}
}

func (s *service) Join(ctx context.Context, in JoinInput) (*Joined, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.BagName)
	if email == "" || name == "" {
		return nil, makeErr(ErrBadInput)
	}

	bag, err := s.bags.ByName(ctx, name)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, makeErr(ErrBagNotFound)
		}
		return nil, err
	}

	e := &model.WaitlistEntry{
		BagID:    bag.ID,
		UserID:   in.UserID,
		UserName: strings.TrimSpace(in.UserName),
		Email:    email,
	}
	if err := s.r.Insert(ctx, e); err != nil {
		if errors.Is(err, waitlistrepo.ErrDuplicate) {
			return nil, makeErr(ErrAlreadyJoined)
		}
		return nil, err
	}

	pos, err := s.r.Position(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	return &Joined{Entry: *e, Position: pos}, nil
}

func (s *service) List(ctx context.Context, bagID uuid.UUID) ([]model.WaitlistEntry, error) {
	if _, err := s.bags.ByID(ctx, bagID); err != nil {
		if database.IsNoRows(err) {
			return nil, makeErr(ErrBagNotFound)
		}
		return nil, err
	}
	return s.r.ListByBag(ctx, bagID)
}

func (s *service) Transition(ctx context.Context, bagID uuid.UUID, status model.BagStatus, renterID *uuid.UUID) (*StatusChange, error) {
	if !status.Valid() {
		return nil, makeErr(ErrBadInput)
	}
	bag, err := s.bags.LockByID(ctx, bagID)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, makeErr(ErrBagNotFound)
		}
		return nil, err
	}

	ch := &StatusChange{BagID: bag.ID, BagName: bag.Name, From: bag.Status, To: status}
	if bag.Status == status {
		return ch, nil
	}
	if !bag.Status.CanTransitionTo(status) {
		return nil, codedError{
			code: ErrIllegalTransition,
			msg:  fmt.Sprintf("cannot move bag from %s to %s", bag.Status, status),
		}
	}
	if status == model.BagRented && renterID == nil {
		return nil, makeErr(ErrRenterRequired)
	}

	if err := s.bags.SetStatus(ctx, bag.ID, status, renterID); err != nil {
		return nil, err
	}

	if status == model.BagAvailable {
		first, err := s.r.FirstPending(ctx, bag.ID)
		switch {
		case database.IsNoRows(err):
		case err != nil:
			return nil, err
		default:
			now := s.clock.Now()
			if err := s.r.MarkNotified(ctx, first.ID, now); err != nil {
				return nil, err
			}
			first.Notified, first.NotifiedAt = true, &now
			ch.Notified = first
		}
	}
	return ch, nil
}

// Dispatch runs after commit. A failed email leaves the entry flagged.
func (s *service) Dispatch(ctx context.Context, ch *StatusChange) error {
	if ch == nil {
		return nil
	}
	if ch.From != ch.To {
		if err := s.cat.Invalidate(ctx); err != nil {
			s.log.Warn("catalog invalidate failed", zap.Error(err))
		}
	}
	if ch.Notified == nil {
		return nil
	}

	msg, err := notifier.BagAvailable(ch.Notified.Email, ch.Notified.UserName, ch.BagName)
	if err == nil {
		err = s.send.Send(ctx, msg)
	}
	if err != nil {
		s.log.Error("waitlist notification failed",
			zap.Int64("entry_id", ch.Notified.ID),
			zap.String("bag_id", ch.BagID.String()),
			zap.Error(err),
		)
		return codedError{code: ErrSendFailed, msg: "entry flagged but email failed: " + err.Error()}
	}
	s.log.Info("waitlist notified",
		zap.Int64("entry_id", ch.Notified.ID),
		zap.String("bag_id", ch.BagID.String()),
	)
	return nil
}

func (s *service) SetBagStatus(ctx context.Context, bagID uuid.UUID, status model.BagStatus, renterID *uuid.UUID) (*StatusChange, error) {
	var ch *StatusChange
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		ch, err = s.Transition(ctx, bagID, status, renterID)
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = s.Dispatch(ctx, ch)
	return ch, nil
}

// Notify flags one entry and emails it through the same path as an automatic release.
func (s *service) Notify(ctx context.Context, entryID int64) (*model.WaitlistEntry, error) {
	var ch *StatusChange
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		e, err := s.r.LockByID(ctx, entryID)
		if err != nil {
			if database.IsNoRows(err) {
				return makeErr(ErrEntryNotFound)
			}
			return err
		}
		bag, err := s.bags.ByID(ctx, e.BagID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if err := s.r.MarkNotified(ctx, e.ID, now); err != nil {
			return err
		}
		e.Notified, e.NotifiedAt = true, &now
		ch = &StatusChange{BagID: bag.ID, BagName: bag.Name, From: bag.Status, To: bag.Status, Notified: e}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ch.Notified, s.Dispatch(ctx, ch)
}

func (s *service) Remove(ctx context.Context, entryID int64) error {
	ok, err := s.r.Delete(ctx, entryID)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrEntryNotFound)
	}
	return nil
}
