package webhooksvc

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bagrental/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("invalid callback token")
	ErrBadPayload   = errors.New("bad webhook payload")
)

type Memberships interface {
	UpdateMembership(ctx context.Context, userID uuid.UUID, tier model.MembershipTier, status model.MembershipStatus) (*model.Profile, error)
	SetIdentityVerified(ctx context.Context, userID uuid.UUID, verified bool) error
}

type Service interface {
	HandlePayment(ctx context.Context, token string, raw []byte) error
	HandleIdentity(ctx context.Context, token string, raw []byte) error
}

type service struct {
	token string
	m     Memberships
	log   *zap.Logger
}

func New(token string, m Memberships, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{token: token, m: m, log: log}
}

func (s *service) verify(token string) error {
	if s.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

type invoiceEvent struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	ExternalID string `json:"external_id"`
}

// ParseExternalID reads "membership:<user uuid>:<plan>".
func ParseExternalID(ext string) (uuid.UUID, model.MembershipTier, bool) {
	parts := strings.Split(ext, ":")
	if len(parts) != 3 || parts[0] != "membership" {
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, "", false
	}
	plan := model.MembershipTier(parts[2])
	if !plan.Valid() {
		return uuid.Nil, "", false
	}
	return id, plan, true
}

func (s *service) HandlePayment(ctx context.Context, token string, raw []byte) error {
	if err := s.verify(token); err != nil {
		return err
	}
	var ev invoiceEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if ev.ID == "" || ev.Status == "" {
		return fmt.Errorf("%w: missing invoice fields", ErrBadPayload)
	}

	switch ev.Status {
	case "PAID":
		userID, plan, ok := ParseExternalID(ev.ExternalID)
		if !ok {
			s.log.Info("payment event ignored", zap.String("invoice_id", ev.ID), zap.String("external_id", ev.ExternalID))
			return nil
		}
		if _, err := s.m.UpdateMembership(ctx, userID, plan, model.MembershipActive); err != nil {
			return err
		}
		s.log.Info("membership activated", zap.String("user_id", userID.String()), zap.String("plan", string(plan)))
		return nil
	default:
		return nil
	}
}

type identityEvent struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

func (s *service) HandleIdentity(ctx context.Context, token string, raw []byte) error {
	if err := s.verify(token); err != nil {
		return err
	}
	var ev identityEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	id, err := uuid.Parse(ev.UserID)
	if err != nil {
		return fmt.Errorf("%w: user_id", ErrBadPayload)
	}

	switch strings.ToLower(ev.Status) {
	case "verified":
		return s.m.SetIdentityVerified(ctx, id, true)
	case "rejected", "failed":
		return s.m.SetIdentityVerified(ctx, id, false)
	default:
		return nil
	}
}
