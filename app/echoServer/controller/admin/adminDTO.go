package admin

import "github.com/shopspring/decimal"

type CreateBagReq struct {
	Name           string          `json:"name" validate:"required,max=200"`
	Brand          string          `json:"brand" validate:"max=200"`
	Description    string          `json:"description" validate:"max=5000"`
	Images         []string        `json:"images" validate:"max=20,dive,url"`
	MembershipType string          `json:"membership_type" validate:"required,tier"`
	DailyRate      decimal.Decimal `json:"daily_rate"`
}

// UpdateBagReq carries both inventory edits and a status change.
type UpdateBagReq struct {
	// ID is read when the path carries none.
	ID             string           `json:"id" validate:"omitempty,uuid"`
	Name           *string          `json:"name" validate:"omitempty,max=200"`
	Brand          *string          `json:"brand" validate:"omitempty,max=200"`
	Description    *string          `json:"description" validate:"omitempty,max=5000"`
	Images         []string         `json:"images" validate:"omitempty,max=20,dive,url"`
	MembershipType *string          `json:"membership_type" validate:"omitempty,tier"`
	DailyRate      *decimal.Decimal `json:"daily_rate"`
	Status         *string          `json:"status" validate:"omitempty,bagstatus"`
	RenterID       *string          `json:"renter_id" validate:"omitempty,uuid"`
}

type NFCReq struct {
	BagID string `json:"bag_id" validate:"required,uuid"`
	UID   string `json:"uid" validate:"required,max=64"`
}
