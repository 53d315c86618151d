package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/internal/repository"
	"github.com/queueflow/queueflow-api/internal/service/event"
	"github.com/queueflow/queueflow-api/internal/service/schedule"
	apperrors "github.com/queueflow/queueflow-api/pkg/errors"
	"github.com/queueflow/queueflow-api/pkg/metrics"
)

// AddResult bundles the records created by a queue add.
type AddResult struct {
	Patient    *model.Patient    `json:"patient"`
	QueueEntry *model.QueueEntry `json:"queue_entry"`
}

type Service struct {
	queueRepo   repository.QueueRepository
	patientRepo repository.PatientRepository
	userRepo    repository.UserRepository
	events      *event.Service
	metrics     *metrics.Metrics
}

func NewService(queueRepo repository.QueueRepository, patientRepo repository.PatientRepository,
	userRepo repository.UserRepository, events *event.Service, m *metrics.Metrics) *Service {
	return &Service{
		queueRepo:   queueRepo,
		patientRepo: patientRepo,
		userRepo:    userRepo,
		events:      events,
		metrics:     m,
	}
}

// scope returns the owner filter for a caller: admins see every tenant's
// entries, everyone else only their own.
func scope(claims *model.TokenClaims) *uuid.UUID {
	if claims.IsAdmin() {
		return nil
	}
	id := claims.UserID
	return &id
}

// AddPatient registers a walk-in under the given business and places them in
// the queue in waiting state, then bumps the owner's counters.
func (s *Service) AddPatient(ctx context.Context, ownerID uuid.UUID, req *model.CreatePatientRequest, selfRegistered bool) (*AddResult, error) {
	// The public path must 404 on an unknown business before writing.
	if _, err := s.userRepo.Get(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("queue", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	now := time.Now()
	patient := &model.Patient{
		UserID:         ownerID,
		Name:           req.Name,
		PhoneNumber:    req.PhoneNumber,
		Age:            req.Age,
		VisitDate:      now,
		EntryTime:      now,
		SelfRegistered: selfRegistered,
	}
	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	entry := &model.QueueEntry{
		UserID:    ownerID,
		PatientID: patient.ID,
		Status:    model.QueueStatusWaiting,
	}
	if err := s.queueRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create queue entry: %w", err)
	}

	if err := s.bumpPatientCounts(ctx, ownerID); err != nil {
		return nil, err
	}

	s.events.Emit(ctx, model.EventQueuePatientAdded, entry)
	s.metrics.QueueTransitions.WithLabelValues(string(model.QueueStatusWaiting)).Inc()

	return &AddResult{Patient: patient, QueueEntry: entry}, nil
}

// Waitlist returns waiting entries, oldest first.
func (s *Service) Waitlist(ctx context.Context, claims *model.TokenClaims) ([]*model.QueueEntryDetail, error) {
	return s.queueRepo.ListByStatus(ctx, scope(claims), model.QueueStatusWaiting)
}

// Serving returns entries currently being served.
func (s *Service) Serving(ctx context.Context, claims *model.TokenClaims) ([]*model.QueueEntryDetail, error) {
	return s.queueRepo.ListByStatus(ctx, scope(claims), model.QueueStatusServing)
}

// AllEntries returns every queue entry visible to the caller.
func (s *Service) AllEntries(ctx context.Context, claims *model.TokenClaims) ([]*model.QueueEntryDetail, error) {
	return s.queueRepo.ListAll(ctx, scope(claims))
}

// GetPatient returns a single patient, owner-scoped unless admin.
func (s *Service) GetPatient(ctx context.Context, claims *model.TokenClaims, patientID uuid.UUID) (*model.Patient, error) {
	patient, err := s.patientRepo.Get(ctx, patientID, scope(claims))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// PublicWaitlist is the unauthenticated, name-only waitlist of a business.
func (s *Service) PublicWaitlist(ctx context.Context, userID uuid.UUID) ([]*model.PublicQueueEntry, error) {
	return s.queueRepo.PublicWaitlist(ctx, userID)
}

// Serve moves a waiting patient to serving and stamps their consultation
// start. A wrong state or a non-owner caller both yield not-found.
func (s *Service) Serve(ctx context.Context, claims *model.TokenClaims, patientID uuid.UUID) (*model.QueueEntry, error) {
	entry, err := s.queueRepo.Transition(ctx, patientID, model.QueueStatusWaiting, model.QueueStatusServing, scope(claims))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient in waitlist", err)
		}
		return nil, fmt.Errorf("failed to move patient to serving: %w", err)
	}

	if err := s.patientRepo.SetPostConsultation(ctx, patientID, time.Now()); err != nil {
		return nil, err
	}

	s.events.Emit(ctx, model.EventQueuePatientServing, entry)
	s.metrics.QueueTransitions.WithLabelValues(string(model.QueueStatusServing)).Inc()
	return entry, nil
}

// Complete finishes a serving patient's consultation.
func (s *Service) Complete(ctx context.Context, claims *model.TokenClaims, patientID uuid.UUID) (*model.QueueEntry, error) {
	entry, err := s.queueRepo.Transition(ctx, patientID, model.QueueStatusServing, model.QueueStatusCompleted, scope(claims))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient in serving list", err)
		}
		return nil, fmt.Errorf("failed to complete consultation: %w", err)
	}

	if err := s.patientRepo.SetCompletionTime(ctx, patientID, time.Now()); err != nil {
		return nil, err
	}

	s.events.Emit(ctx, model.EventQueuePatientDone, entry)
	s.metrics.QueueTransitions.WithLabelValues(string(model.QueueStatusCompleted)).Inc()
	return entry, nil
}

// Cancel removes a waiting patient from the queue. Serving patients have no
// cancel path.
func (s *Service) Cancel(ctx context.Context, claims *model.TokenClaims, patientID uuid.UUID) (*model.Patient, error) {
	return s.cancel(ctx, patientID, scope(claims), false)
}

// SelfCancel is the unauthenticated customer-facing cancellation; it
// additionally flags the patient as self-canceled.
func (s *Service) SelfCancel(ctx context.Context, userID, patientID uuid.UUID) (*model.Patient, error) {
	return s.cancel(ctx, patientID, &userID, true)
}

func (s *Service) cancel(ctx context.Context, patientID uuid.UUID, owner *uuid.UUID, self bool) (*model.Patient, error) {
	entry, err := s.queueRepo.Transition(ctx, patientID, model.QueueStatusWaiting, model.QueueStatusCancelled, owner)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient in waitlist", err)
		}
		return nil, fmt.Errorf("failed to cancel queue entry: %w", err)
	}

	if err := s.patientRepo.MarkCanceled(ctx, patientID, self); err != nil {
		return nil, err
	}
	if err := s.userRepo.IncrementCanceledCount(ctx, entry.UserID); err != nil {
		return nil, err
	}

	s.events.Emit(ctx, model.EventQueuePatientCanceled, entry)
	s.metrics.QueueTransitions.WithLabelValues(string(model.QueueStatusCancelled)).Inc()

	patient, err := s.patientRepo.Get(ctx, patientID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) bumpPatientCounts(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.userRepo.ResetDailyCountIfNeeded(ctx, ownerID, schedule.StartOfDay(time.Now())); err != nil {
		return err
	}
	if err := s.userRepo.IncrementPatientCounts(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to update patient counts: %w", err)
	}
	return nil
}
