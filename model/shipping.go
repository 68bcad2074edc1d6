package model

import (
	"time"

	"github.com/google/uuid"
)

// ShippingRow is one outgoing bag with its member's delivery address.
type ShippingRow struct {
	ReservationID uuid.UUID         `json:"reservation_id"`
	Status        ReservationStatus `json:"status"`
	StartDate     time.Time         `json:"start_date"`
	EndDate       time.Time         `json:"end_date"`
	BagName       string            `json:"bag_name"`
	FullName      string            `json:"full_name"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	AddressLine1  string            `json:"address_line1"`
	AddressLine2  string            `json:"address_line2"`
	City          string            `json:"city"`
	PostalCode    string            `json:"postal_code"`
	Country       string            `json:"country"`
}

var ShippingHeader = []string{
	"reservation_id", "status", "start_date", "end_date", "bag_name",
	"full_name", "email", "phone", "address_line1", "address_line2",
	"city", "postal_code", "country",
}

func (r ShippingRow) Record() []string {
	return []string{
		r.ReservationID.String(),
		string(r.Status),
		r.StartDate.Format("2006-01-02"),
		r.EndDate.Format("2006-01-02"),
		r.BagName,
		r.FullName,
		r.Email,
		r.Phone,
		r.AddressLine1,
		r.AddressLine2,
		r.City,
		r.PostalCode,
		r.Country,
	}
}
