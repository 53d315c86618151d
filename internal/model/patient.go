package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient belongs to exactly one business. Patients are never deleted, only
// flagged through the cancellation paths.
type Patient struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	Name           string     `json:"name" db:"name"`
	PhoneNumber    string     `json:"phone_number" db:"phone_number"`
	Age            *int       `json:"age,omitempty" db:"age"`
	VisitDate      time.Time  `json:"visit_date" db:"visit_date"`
	EntryTime      time.Time  `json:"entry_time" db:"entry_time"`
	PostConsult    *time.Time `json:"post_consultation,omitempty" db:"post_consultation"`
	CompletionTime *time.Time `json:"completion_time,omitempty" db:"completion_time"`
	SelfRegistered bool       `json:"self_registered" db:"self_registered"`
	SelfCanceled   bool       `json:"self_canceled" db:"self_canceled"`
	Canceled       bool       `json:"canceled" db:"canceled"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// CreatePatientRequest is shared by the owner queue-add and the public
// self-registration endpoint.
type CreatePatientRequest struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Age         *int   `json:"age"`
}
