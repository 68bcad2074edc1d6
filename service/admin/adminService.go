package adminsvc

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"bagrental/model"
	bagrepo "bagrental/repository/bag"
	"bagrental/repository/cache"
	waitlistsvc "bagrental/service/waitlist"
	"bagrental/util/clock"
	"bagrental/util/csvx"
	"bagrental/util/database"
	"bagrental/util/htmlx"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ErrCode string

const (
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrNameTaken      ErrCode = "NAME_TAKEN"
	ErrInvalidUID     ErrCode = "INVALID_UID"
	ErrNFCAssigned    ErrCode = "NFC_ALREADY_ASSIGNED"
	ErrNFCInUse       ErrCode = "NFC_IN_USE"
	ErrNFCNotAssigned ErrCode = "NFC_NOT_ASSIGNED"
	ErrNFCBlocked     ErrCode = "NFC_BLOCKED"
	ErrNFCNotBlocked  ErrCode = "NFC_NOT_BLOCKED"
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

const mismatchReason = "uid mismatch on scan"

var uidPattern = regexp.MustCompile(`^[0-9A-F]{8,20}$`)

// NormalizeUID uppercases a tag UID and strips separators; "04:a2:2b:1c" → "04A22B1C".
func NormalizeUID(raw string) (string, bool) {
	r := strings.NewReplacer(":", "", "-", "", " ", "")
	uid := strings.ToUpper(r.Replace(strings.TrimSpace(raw)))
	return uid, uidPattern.MatchString(uid)
}

type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type BagRepo interface {
	List(ctx context.Context, f bagrepo.Filter) ([]model.Bag, error)
	ByID(ctx context.Context, id uuid.UUID) (*model.Bag, error)
	Create(ctx context.Context, b *model.Bag) error
	Update(ctx context.Context, b *model.Bag) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	AssignNFC(ctx context.Context, id uuid.UUID, uid string, at time.Time) (bool, error)
	RecordScan(ctx context.Context, id uuid.UUID, at time.Time) error
	BlockNFC(ctx context.Context, id uuid.UUID, reason string) error
	UnblockNFC(ctx context.Context, id uuid.UUID) error
}

type WaitlistRepo interface {
	CountsByBag(ctx context.Context) (map[uuid.UUID]int, error)
}

type ShippingRepo interface {
	ListShipping(ctx context.Context) ([]model.ShippingRow, error)
}

type Availability interface {
	Transition(ctx context.Context, bagID uuid.UUID, status model.BagStatus, renterID *uuid.UUID) (*waitlistsvc.StatusChange, error)
	Dispatch(ctx context.Context, ch *waitlistsvc.StatusChange) error
}

// InventoryItem is a bag as the back office sees it.
type InventoryItem struct {
	model.Bag
	NFC           model.NFCBinding `json:"nfc"`
	WaitlistCount int              `json:"waitlist_count"`
}

type BagInput struct {
	Name           string
	Brand          string
	Description    string
	Images         []string
	MembershipType model.MembershipTier
	DailyRate      decimal.Decimal
}

// BagPatch holds the fields to change; nil means keep.
type BagPatch struct {
	Name           *string
	Brand          *string
	Description    *string
	Images         []string
	MembershipType *model.MembershipTier
	DailyRate      *decimal.Decimal
	Status         *model.BagStatus
	RenterID       *uuid.UUID
}

type ScanResult struct {
	BagID   uuid.UUID `json:"bag_id"`
	Valid   bool      `json:"valid"`
	Blocked bool      `json:"blocked"`
	Reason  string    `json:"reason,omitempty"`
}

type Service interface {
	Inventory(ctx context.Context) ([]InventoryItem, error)
	CreateBag(ctx context.Context, in BagInput) (*model.Bag, error)
	UpdateBag(ctx context.Context, id uuid.UUID, p BagPatch) (*model.Bag, error)
	DeleteBag(ctx context.Context, id uuid.UUID) error

	// NFC
	AssignNFC(ctx context.Context, bagID uuid.UUID, uid string) (*model.Bag, error)
	ScanNFC(ctx context.Context, bagID uuid.UUID, uid string) (*ScanResult, error)
	UnblockNFC(ctx context.Context, bagID uuid.UUID) error

	// Shipping export
	Shipping(ctx context.Context) ([]model.ShippingRow, error)
	ShippingCSV(ctx context.Context, w io.Writer) error
}

type service struct {
	tx       TxRunner
	bags     BagRepo
	waitlist WaitlistRepo
	shipping ShippingRepo
	avail    Availability
	cat      cache.Catalog
	clock    clock.Clock
	log      *zap.Logger
}

func New(tx TxRunner, bags BagRepo, w WaitlistRepo, sh ShippingRepo, avail Availability, cat cache.Catalog, clk clock.Clock, log *zap.Logger) Service {
	if cat == nil {
		cat = cache.NewNoop()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{tx: tx, bags: bags, waitlist: w, shipping: sh, avail: avail, cat: cat, clock: clk, log: log}
}

func (s *service) invalidate(ctx context.Context) {
	if err := s.cat.Invalidate(ctx); err != nil {
		s.log.Warn("catalog invalidate failed", zap.Error(err))
	}
}

func (s *service) Inventory(ctx context.Context) ([]InventoryItem, error) {
	bags, err := s.bags.List(ctx, bagrepo.Filter{})
	if err != nil {
		return nil, err
	}
	counts, err := s.waitlist.CountsByBag(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]InventoryItem, 0, len(bags))
	for _, b := range bags {
		out = append(out, InventoryItem{Bag: b, NFC: b.NFC, WaitlistCount: counts[b.ID]})
	}
	return out, nil
}

func validateBag(b *model.Bag) error {
	b.Name = strings.TrimSpace(b.Name)
	switch {
	case b.Name == "":
		return codedError{code: ErrBadInput, msg: "name is required"}
	case !b.MembershipType.Valid():
		return codedError{code: ErrBadInput, msg: "membership_type must be essentiel, signature or prive"}
	case b.DailyRate.IsNegative():
		return codedError{code: ErrBadInput, msg: "daily_rate must be >= 0"}
	}
	b.Description = htmlx.Sanitize(b.Description)
	return nil
}

func mapWriteErr(err error) error {
	if c, ok := database.UniqueViolation(err); ok && c == "bags_name_key" {
		return codedError{code: ErrNameTaken, msg: "a bag with this name already exists"}
	}
	return err
}

func (s *service) CreateBag(ctx context.Context, in BagInput) (*model.Bag, error) {
	b := &model.Bag{
		Name:           in.Name,
		Brand:          strings.TrimSpace(in.Brand),
		Description:    in.Description,
		Images:         in.Images,
		MembershipType: in.MembershipType,
		Status:         model.BagAvailable,
		DailyRate:      in.DailyRate,
	}
	if err := validateBag(b); err != nil {
		return nil, err
	}
	if err := s.bags.Create(ctx, b); err != nil {
		return nil, mapWriteErr(err)
	}
	s.invalidate(ctx)
	return b, nil
}

// UpdateBag applies field edits and an optional status change in one transaction.
func (s *service) UpdateBag(ctx context.Context, id uuid.UUID, p BagPatch) (*model.Bag, error) {
	var (
		bag *model.Bag
		ch  *waitlistsvc.StatusChange
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.bags.ByID(ctx, id)
		if err != nil {
			if database.IsNoRows(err) {
				return makeErr(ErrNotFound)
			}
			return err
		}

		if p.Name != nil || p.Brand != nil || p.Description != nil || p.Images != nil || p.MembershipType != nil || p.DailyRate != nil {
			if p.Name != nil {
				b.Name = *p.Name
			}
			if p.Brand != nil {
				b.Brand = strings.TrimSpace(*p.Brand)
			}
			if p.Description != nil {
				b.Description = *p.Description
			}
			if p.Images != nil {
				b.Images = p.Images
			}
			if p.MembershipType != nil {
				b.MembershipType = *p.MembershipType
			}
			if p.DailyRate != nil {
				b.DailyRate = *p.DailyRate
			}
			if err := validateBag(b); err != nil {
				return err
			}
			if err := s.bags.Update(ctx, b); err != nil {
				return mapWriteErr(err)
			}
		}

		if p.Status != nil {
			ch, err = s.avail.Transition(ctx, b.ID, *p.Status, p.RenterID)
			if err != nil {
				return err
			}
			b.Status = *p.Status
			if b.Status == model.BagRented {
				b.CurrentRenterID = p.RenterID
			} else {
				b.CurrentRenterID = nil
			}
		}
		bag = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	_ = s.avail.Dispatch(ctx, ch)
	s.invalidate(ctx)
	return bag, nil
}

func (s *service) DeleteBag(ctx context.Context, id uuid.UUID) error {
	ok, err := s.bags.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) AssignNFC(ctx context.Context, bagID uuid.UUID, raw string) (*model.Bag, error) {
	uid, ok := NormalizeUID(raw)
	if !ok {
		return nil, codedError{code: ErrInvalidUID, msg: "uid must be 8 to 20 hex characters"}
	}

	assigned, err := s.bags.AssignNFC(ctx, bagID, uid, s.clock.Now())
	if err != nil {
		if _, dup := database.UniqueViolation(err); dup {
			return nil, codedError{code: ErrNFCInUse, msg: "tag is already bound to another bag"}
		}
		return nil, err
	}

	b, err := s.bags.ByID(ctx, bagID)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !assigned {
		return nil, codedError{code: ErrNFCAssigned, msg: "bag already has a tag"}
	}
	s.log.Info("nfc assigned", zap.String("bag_id", bagID.String()))
	return b, nil
}

// ScanNFC checks a scanned tag against the bound one. A mismatch blocks the bag
// until an admin unblocks it.
func (s *service) ScanNFC(ctx context.Context, bagID uuid.UUID, raw string) (*ScanResult, error) {
	b, err := s.bags.ByID(ctx, bagID)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if b.NFC.UID == nil {
		return nil, makeErr(ErrNFCNotAssigned)
	}
	res := &ScanResult{BagID: b.ID}
	if b.NFC.Blocked {
		res.Blocked = true
		if b.NFC.BlockReason != nil {
			res.Reason = *b.NFC.BlockReason
		}
		return res, makeErr(ErrNFCBlocked)
	}

	uid, _ := NormalizeUID(raw)
	if subtle.ConstantTimeCompare([]byte(uid), []byte(*b.NFC.UID)) != 1 {
		if err := s.bags.BlockNFC(ctx, b.ID, mismatchReason); err != nil {
			return nil, err
		}
		s.log.Warn("nfc mismatch, bag blocked", zap.String("bag_id", b.ID.String()))
		res.Blocked, res.Reason = true, mismatchReason
		return res, nil
	}

	if err := s.bags.RecordScan(ctx, b.ID, s.clock.Now()); err != nil {
		return nil, err
	}
	res.Valid = true
	return res, nil
}

func (s *service) UnblockNFC(ctx context.Context, bagID uuid.UUID) error {
	b, err := s.bags.ByID(ctx, bagID)
	if err != nil {
		if database.IsNoRows(err) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if !b.NFC.Blocked {
		return makeErr(ErrNFCNotBlocked)
	}
	return s.bags.UnblockNFC(ctx, bagID)
}

func (s *service) Shipping(ctx context.Context) ([]model.ShippingRow, error) {
	return s.shipping.ListShipping(ctx)
}

func (s *service) ShippingCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.shipping.ListShipping(ctx)
	if err != nil {
		return err
	}
	records := make([][]string, 0, len(rows)+1)
	records = append(records, model.ShippingHeader)
	for _, r := range rows {
		records = append(records, r.Record())
	}
	return csvx.NewWriter(w).WriteAll(records)
}
