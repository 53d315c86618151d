package model

import (
	"time"

	"github.com/google/uuid"
)

// QueueEntryStatus tracks a patient's progress through the walk-in queue.
type QueueEntryStatus string

const (
	QueueStatusWaiting   QueueEntryStatus = "waiting"
	QueueStatusServing   QueueEntryStatus = "serving"
	QueueStatusCompleted QueueEntryStatus = "completed"
	QueueStatusCancelled QueueEntryStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s QueueEntryStatus) Terminal() bool {
	return s == QueueStatusCompleted || s == QueueStatusCancelled
}

// QueueEntry is the record tracking one patient through
// waiting -> serving -> completed/cancelled. Transitions are forward-only;
// there is no path back to waiting.
type QueueEntry struct {
	Base
	UserID     uuid.UUID        `json:"user_id" db:"user_id"`
	PatientID  uuid.UUID        `json:"patient_id" db:"patient_id"`
	Status     QueueEntryStatus `json:"status" db:"status"`
	TimeWaited int              `json:"time_waited" db:"time_waited"`
	TimeServed int              `json:"time_served" db:"time_served"`
}

// QueueEntryDetail is a queue entry joined with its patient record.
type QueueEntryDetail struct {
	QueueEntry
	Patient Patient `json:"patient" db:"patient"`
}

// PublicQueueEntry is the reduced view exposed on the unauthenticated
// waitlist: entry position data plus the patient's name only.
type PublicQueueEntry struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	PatientID   uuid.UUID        `json:"patient_id" db:"patient_id"`
	PatientName string           `json:"patient_name" db:"patient_name"`
	Status      QueueEntryStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}
