package model

import (
	"time"

	"github.com/google/uuid"
)

type MembershipStatus string

const (
	MembershipFree      MembershipStatus = "free"
	MembershipPending   MembershipStatus = "pending"
	MembershipActive    MembershipStatus = "active"
	MembershipCancelled MembershipStatus = "cancelled"
)

func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipFree, MembershipPending, MembershipActive, MembershipCancelled:
		return true
	}
	return false
}

type Profile struct {
	UserID           uuid.UUID        `json:"user_id"`
	FullName         string           `json:"full_name"`
	Phone            string           `json:"phone"`
	AddressLine1     string           `json:"address_line1"`
	AddressLine2     string           `json:"address_line2"`
	City             string           `json:"city"`
	PostalCode       string           `json:"postal_code"`
	Country          string           `json:"country"`
	MembershipType   MembershipTier   `json:"membership_type,omitempty"`
	MembershipStatus MembershipStatus `json:"membership_status"`
	PendingPlan      MembershipTier   `json:"pending_plan,omitempty"`
	IdentityVerified bool             `json:"identity_verified"`
	Role             string           `json:"role"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Covers reports whether the profile's active membership reaches tier.
func (p Profile) Covers(tier MembershipTier) bool {
	return p.MembershipStatus == MembershipActive && p.MembershipType.Rank() >= tier.Rank()
}
