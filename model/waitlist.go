package model

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistEntry is one opt-in on an unavailable bag. First in line is the earliest AddedDate.
type WaitlistEntry struct {
	ID         int64      `json:"id"`
	BagID      uuid.UUID  `json:"bag_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	UserName   string     `json:"user_name"`
	Email      string     `json:"email"`
	AddedDate  time.Time  `json:"added_date"`
	Notified   bool       `json:"notified"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}
