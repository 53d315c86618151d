package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/queueflow/queueflow-api/internal/model"
)

var (
	// ErrNotFound covers both a missing row and a conditional update that
	// matched nothing (wrong state or wrong owner).
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetBySlug(ctx context.Context, slug string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error)
	UpdateBusinessHours(ctx context.Context, id uuid.UUID, hours model.BusinessHours) (*model.User, error)

	// ResetDailyCountIfNeeded zeroes daily_patients when last_reset_date is
	// before startOfDay. Conditional, so it fires at most once per day.
	ResetDailyCountIfNeeded(ctx context.Context, id uuid.UUID, startOfDay time.Time) error
	// IncrementPatientCounts bumps total_patients and daily_patients
	// atomically at the storage layer.
	IncrementPatientCounts(ctx context.Context, id uuid.UUID) error
	IncrementCanceledCount(ctx context.Context, id uuid.UUID) error
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	// Get scopes to the owner unless owner is nil (admin caller).
	Get(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*model.Patient, error)
	SetPostConsultation(ctx context.Context, id uuid.UUID, at time.Time) error
	SetCompletionTime(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkCanceled(ctx context.Context, id uuid.UUID, selfCanceled bool) error
	// ResetEntry re-stamps entry_time and visit_date for walk-in conversion.
	ResetEntry(ctx context.Context, id uuid.UUID, at time.Time) error
}

type QueueRepository interface {
	Create(ctx context.Context, entry *model.QueueEntry) error
	// Transition atomically moves the patient's entry from one status to the
	// next. A nil owner skips owner scoping (admin caller). Zero matched
	// rows surface as ErrNotFound.
	Transition(ctx context.Context, patientID uuid.UUID, from, to model.QueueEntryStatus, owner *uuid.UUID) (*model.QueueEntry, error)
	ListByStatus(ctx context.Context, owner *uuid.UUID, status model.QueueEntryStatus) ([]*model.QueueEntryDetail, error)
	ListAll(ctx context.Context, owner *uuid.UUID) ([]*model.QueueEntryDetail, error)
	CountByStatus(ctx context.Context, userID uuid.UUID, status model.QueueEntryStatus) (int, error)
	PublicWaitlist(ctx context.Context, userID uuid.UUID) ([]*model.PublicQueueEntry, error)
}

type AppointmentRepository interface {
	// Create returns ErrDuplicate when another scheduled appointment already
	// occupies (user_id, start_time).
	Create(ctx context.Context, appointment *model.Appointment) error
	ExistsScheduledAt(ctx context.Context, userID uuid.UUID, startTime time.Time) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.AppointmentDetail, error)
	ListScheduledBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
	// Transition moves an owner's appointment between statuses; zero matched
	// rows surface as ErrNotFound.
	Transition(ctx context.Context, id, userID uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) error
}
