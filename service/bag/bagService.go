package bagsvc

import (
	"context"
	"errors"
	"time"

	"bagrental/model"
	bagrepo "bagrental/repository/bag"
	"bagrental/repository/cache"
	"bagrental/util/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Filter = bagrepo.Filter

var ErrNotFound = errors.New("bag not found")

// View is a bag as shown in the catalog.
type View struct {
	model.Bag
	CanReserve      bool `json:"can_reserve"`
	CanJoinWaitlist bool `json:"can_join_waitlist"`
	WaitlistCount   int  `json:"waitlist_count"`

	// WaitingList is only filled by Detail.
	WaitingList []WaitingSlot `json:"waiting_list,omitempty"`
}

// WaitingSlot is a waitlist entry with the member's identity stripped.
type WaitingSlot struct {
	Position  int       `json:"position"`
	AddedDate time.Time `json:"added_date"`
}

func NewView(b model.Bag) View {
	return View{Bag: b, CanReserve: b.CanReserve(), CanJoinWaitlist: b.CanJoinWaitlist()}
}

type Repo interface {
	List(ctx context.Context, f Filter) ([]model.Bag, error)
	ByID(ctx context.Context, id uuid.UUID) (*model.Bag, error)
}

type WaitlistRepo interface {
	ListByBag(ctx context.Context, bagID uuid.UUID) ([]model.WaitlistEntry, error)
}

type Service interface {
	List(ctx context.Context, f Filter) ([]View, error)
	Detail(ctx context.Context, id uuid.UUID) (*View, error)
}

type service struct {
	r   Repo
	w   WaitlistRepo
	cat cache.Catalog
	log *zap.Logger
}

func New(r Repo, w WaitlistRepo, cat cache.Catalog, log *zap.Logger) Service {
	if cat == nil {
		cat = cache.NewNoop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{r: r, w: w, cat: cat, log: log}
}

// List reads through the catalog cache. Cache errors fall back to the database.
func (s *service) List(ctx context.Context, f Filter) ([]View, error) {
	bags, hit, err := s.cat.Get(ctx, f.Tier, f.Status)
	if err != nil {
		s.log.Warn("catalog cache get failed", zap.Error(err))
	}
	if !hit {
		bags, err = s.r.List(ctx, f)
		if err != nil {
			return nil, err
		}
		if err := s.cat.Set(ctx, f.Tier, f.Status, bags); err != nil {
			s.log.Warn("catalog cache set failed", zap.Error(err))
		}
	}

	out := make([]View, 0, len(bags))
	for _, b := range bags {
		out = append(out, NewView(b))
	}
	return out, nil
}

// Detail returns the bag with the members still waiting for it, in line order.
func (s *service) Detail(ctx context.Context, id uuid.UUID) (*View, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	entries, err := s.w.ListByBag(ctx, id)
	if err != nil {
		return nil, err
	}

	v := NewView(*b)
	v.WaitingList = []WaitingSlot{}
	for _, e := range entries {
		if e.Notified {
			continue
		}
		v.WaitlistCount++
		v.WaitingList = append(v.WaitingList, WaitingSlot{Position: v.WaitlistCount, AddedDate: e.AddedDate})
	}
	return &v, nil
}
