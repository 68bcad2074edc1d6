// model/reservation.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

var reservationNext = map[ReservationStatus]ReservationStatus{
	ReservationPending:   ReservationConfirmed,
	ReservationConfirmed: ReservationActive,
	ReservationActive:    ReservationCompleted,
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationActive, ReservationCompleted, ReservationCancelled:
		return true
	}
	return false
}

func (s ReservationStatus) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

func (s ReservationStatus) Cancellable() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

// CanAdvanceTo allows exactly one forward step along pending→confirmed→active→completed.
func (s ReservationStatus) CanAdvanceTo(next ReservationStatus) bool {
	n, ok := reservationNext[s]
	return ok && n == next
}

type Reservation struct {
	ID                 uuid.UUID         `json:"id"`
	UserID             uuid.UUID         `json:"user_id"`
	BagID              uuid.UUID         `json:"bag_id"`
	StartDate          time.Time         `json:"start_date"`
	EndDate            time.Time         `json:"end_date"`
	Status             ReservationStatus `json:"status"`
	TotalAmount        decimal.Decimal   `json:"total_amount"`
	CancellationReason *string           `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	// joined columns
	BagName   string `json:"bag_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// Nights between start and end dates.
func (r Reservation) Nights() int {
	return int(r.EndDate.Sub(r.StartDate).Hours() / 24)
}
