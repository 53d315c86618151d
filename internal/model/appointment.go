package model

import (
	"time"

	"github.com/google/uuid"
)

// SlotDuration is the fixed appointment slot length.
const SlotDuration = 30 * time.Minute

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	// Completed is also used for appointments converted to walk-in queue
	// entries via the move-to-waitlist flow.
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	Base
	UserID    uuid.UUID         `json:"user_id" db:"user_id"`
	PatientID *uuid.UUID        `json:"patient_id,omitempty" db:"patient_id"`
	StartTime time.Time         `json:"start_time" db:"start_time"`
	EndTime   time.Time         `json:"end_time" db:"end_time"`
	Status    AppointmentStatus `json:"status" db:"status"`
}

// AppointmentDetail is an appointment joined with its patient record.
type AppointmentDetail struct {
	Appointment
	Patient *Patient `json:"patient,omitempty" db:"patient"`
}

// BookAppointmentRequest is shared by the public booking endpoint and the
// authenticated add-booking endpoint.
type BookAppointmentRequest struct {
	StartTime   time.Time `json:"start_time" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	PhoneNumber string    `json:"phone_number" binding:"required"`
	Age         *int      `json:"age"`
}

// TimeSlot is a free 30-minute candidate window, expressed in UTC.
type TimeSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// BookingResult bundles the two records a booking creates.
type BookingResult struct {
	Appointment *Appointment `json:"appointment"`
	Patient     *Patient     `json:"patient"`
}
