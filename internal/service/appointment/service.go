package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/queueflow/queueflow-api/internal/email"
	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/internal/repository"
	"github.com/queueflow/queueflow-api/internal/service/event"
	"github.com/queueflow/queueflow-api/internal/service/schedule"
	apperrors "github.com/queueflow/queueflow-api/pkg/errors"
	"github.com/queueflow/queueflow-api/pkg/logger"
	"github.com/queueflow/queueflow-api/pkg/metrics"
)

type Service struct {
	apptRepo    repository.AppointmentRepository
	patientRepo repository.PatientRepository
	userRepo    repository.UserRepository
	queueRepo   repository.QueueRepository
	events      *event.Service
	emailSvc    email.Service
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func NewService(
	apptRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	queueRepo repository.QueueRepository,
	events *event.Service,
	emailSvc email.Service,
	m *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		apptRepo:    apptRepo,
		patientRepo: patientRepo,
		userRepo:    userRepo,
		queueRepo:   queueRepo,
		events:      events,
		emailSvc:    emailSvc,
		metrics:     m,
		logger:      logger,
	}
}

// AvailableSlots returns the free 30-minute windows of a business on the
// given IST calendar day.
func (s *Service) AvailableSlots(ctx context.Context, userID uuid.UUID, day time.Time) ([]model.TimeSlot, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	from, to := schedule.DayBounds(day)
	existing, err := s.apptRepo.ListScheduledBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	booked := make([]time.Time, 0, len(existing))
	for _, appt := range existing {
		booked = append(booked, appt.StartTime)
	}

	return schedule.AvailableSlots(user.BusinessHours, day, booked, time.Now()), nil
}

// Book creates a patient and a scheduled appointment for the requested slot
// and bumps the owner's counters. selfRegistered marks public bookings.
func (s *Service) Book(ctx context.Context, userID uuid.UUID, req *model.BookAppointmentRequest, selfRegistered bool) (*model.BookingResult, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	start := req.StartTime.UTC()

	// Friendly pre-check; the partial unique index is the real guard.
	taken, err := s.apptRepo.ExistsScheduledAt(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.Conflict("this slot is no longer available, please choose another time", nil)
	}

	patient := &model.Patient{
		UserID:         userID,
		Name:           req.Name,
		PhoneNumber:    req.PhoneNumber,
		Age:            req.Age,
		VisitDate:      start,
		EntryTime:      start,
		SelfRegistered: selfRegistered,
	}
	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	appt := &model.Appointment{
		UserID:    userID,
		PatientID: &patient.ID,
		StartTime: start,
		EndTime:   start.Add(model.SlotDuration),
		Status:    model.AppointmentStatusScheduled,
	}
	if err := s.apptRepo.Create(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("this slot is no longer available, please choose another time", err)
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	if err := s.bumpPatientCounts(ctx, userID); err != nil {
		return nil, err
	}

	s.metrics.AppointmentsBooked.Inc()
	s.events.Emit(ctx, model.EventAppointmentBooked, appt)

	if err := s.emailSvc.SendBookingNotification(ctx, user, patient, appt); err != nil {
		s.logger.Error(err, "booking notification failed", "user_id", userID)
	}

	return &model.BookingResult{Appointment: appt, Patient: patient}, nil
}

// ListForUser returns all of an owner's appointments with their patients,
// ascending by start time.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.AppointmentDetail, error) {
	return s.apptRepo.ListByUser(ctx, userID)
}

// TodayBookings returns the owner's scheduled appointments for the current
// IST calendar day.
func (s *Service) TodayBookings(ctx context.Context, userID uuid.UUID) ([]*model.Appointment, error) {
	from, to := schedule.DayBounds(time.Now())
	return s.apptRepo.ListScheduledBetween(ctx, userID, from, to)
}

// Cancel moves a scheduled appointment to cancelled and flags its patient.
// An already-terminal appointment or a non-owner caller yields not-found.
func (s *Service) Cancel(ctx context.Context, userID, appointmentID uuid.UUID) (*model.Appointment, error) {
	appt, err := s.apptRepo.Transition(ctx, appointmentID, userID,
		model.AppointmentStatusScheduled, model.AppointmentStatusCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	if appt.PatientID != nil {
		if err := s.patientRepo.MarkCanceled(ctx, *appt.PatientID, false); err != nil {
			return nil, err
		}
	}

	s.metrics.AppointmentsCancelled.Inc()
	s.events.Emit(ctx, model.EventAppointmentCancelled, appt)
	return appt, nil
}

// MoveToWaitlist converts a scheduled appointment into a walk-in: the
// appointment completes, the patient's entry time resets to now and a fresh
// queue entry starts in waiting. Counters are not bumped; the patient was
// counted at booking time.
func (s *Service) MoveToWaitlist(ctx context.Context, userID, appointmentID uuid.UUID) (*model.Patient, *model.QueueEntry, error) {
	appt, err := s.apptRepo.Transition(ctx, appointmentID, userID,
		model.AppointmentStatusScheduled, model.AppointmentStatusCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NotFound("appointment", err)
		}
		return nil, nil, fmt.Errorf("failed to convert appointment: %w", err)
	}
	if appt.PatientID == nil {
		return nil, nil, apperrors.NotFound("patient", nil)
	}

	if err := s.patientRepo.ResetEntry(ctx, *appt.PatientID, time.Now()); err != nil {
		return nil, nil, err
	}

	entry := &model.QueueEntry{
		UserID:    userID,
		PatientID: *appt.PatientID,
		Status:    model.QueueStatusWaiting,
	}
	if err := s.queueRepo.Create(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("failed to create queue entry: %w", err)
	}

	s.events.Emit(ctx, model.EventAppointmentToQueue, entry)

	patient, err := s.patientRepo.Get(ctx, *appt.PatientID, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, entry, nil
}

func (s *Service) bumpPatientCounts(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.ResetDailyCountIfNeeded(ctx, userID, schedule.StartOfDay(time.Now())); err != nil {
		return err
	}
	if err := s.userRepo.IncrementPatientCounts(ctx, userID); err != nil {
		return fmt.Errorf("failed to update patient counts: %w", err)
	}
	return nil
}
