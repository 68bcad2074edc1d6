// model/bag.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MembershipTier string

const (
	TierEssentiel MembershipTier = "essentiel"
	TierSignature MembershipTier = "signature"
	TierPrive     MembershipTier = "prive"
)

// Rank orders tiers; unknown tiers rank 0.
func (t MembershipTier) Rank() int {
	switch t {
	case TierEssentiel:
		return 1
	case TierSignature:
		return 2
	case TierPrive:
		return 3
	}
	return 0
}

func (t MembershipTier) Valid() bool { return t.Rank() > 0 }

type BagStatus string

const (
	BagAvailable   BagStatus = "available"
	BagRented      BagStatus = "rented"
	BagMaintenance BagStatus = "maintenance"
	BagReserved    BagStatus = "reserved"
)

var bagTransitions = map[BagStatus][]BagStatus{
	BagAvailable:   {BagRented, BagMaintenance, BagReserved},
	BagRented:      {BagAvailable},
	BagMaintenance: {BagAvailable},
	BagReserved:    {BagRented, BagAvailable},
}

func (s BagStatus) Valid() bool {
	_, ok := bagTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is a legal move from s. Staying put is not a transition.
func (s BagStatus) CanTransitionTo(next BagStatus) bool {
	for _, n := range bagTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// NFCBinding is the physical tag bound to a bag.
type NFCBinding struct {
	UID         *string    `json:"uid,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	LastScanAt  *time.Time `json:"last_scan_at,omitempty"`
	Blocked     bool       `json:"blocked"`
	BlockReason *string    `json:"block_reason,omitempty"`
	FailedScans int        `json:"failed_scans"`
}

type Bag struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Description     string          `json:"description"`
	Images          []string        `json:"images"`
	MembershipType  MembershipTier  `json:"membership_type"`
	Status          BagStatus       `json:"status"`
	DailyRate       decimal.Decimal `json:"daily_rate"`
	TotalRentals    int             `json:"total_rentals"`
	CurrentRenterID *uuid.UUID      `json:"current_renter_id,omitempty"`
	NFC             NFCBinding      `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CanReserve is false for every status but available; those bags offer the waitlist instead.
func (b Bag) CanReserve() bool      { return b.Status == BagAvailable }
func (b Bag) CanJoinWaitlist() bool { return b.Status != BagAvailable }
