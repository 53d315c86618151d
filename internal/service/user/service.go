package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/internal/repository"
	"github.com/queueflow/queueflow-api/internal/service/schedule"
	apperrors "github.com/queueflow/queueflow-api/pkg/errors"
)

type Service struct {
	userRepo  repository.UserRepository
	queueRepo repository.QueueRepository
	validate  *validator.Validate
}

func NewService(userRepo repository.UserRepository, queueRepo repository.QueueRepository) *Service {
	return &Service{
		userRepo:  userRepo,
		queueRepo: queueRepo,
		validate:  validator.New(),
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*model.User, error) {
	user, err := s.userRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("business", err)
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error) {
	user, err := s.userRepo.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return user, nil
}

// PatientStats returns the owner's counters, lazily resetting the daily
// count when the IST calendar day has turned over since the last reset.
func (s *Service) PatientStats(ctx context.Context, id uuid.UUID) (*model.PatientStats, error) {
	if err := s.userRepo.ResetDailyCountIfNeeded(ctx, id, schedule.StartOfDay(time.Now())); err != nil {
		return nil, err
	}

	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &model.PatientStats{
		TotalPatients:    user.TotalPatients,
		DailyPatients:    user.DailyPatients,
		CanceledPatients: user.CanceledPatients,
		LastResetDate:    user.LastResetDate,
	}, nil
}

// QueueCounts returns the public waiting/serving counts for a business.
func (s *Service) QueueCounts(ctx context.Context, userID uuid.UUID) (*model.QueueCounts, error) {
	waiting, err := s.queueRepo.CountByStatus(ctx, userID, model.QueueStatusWaiting)
	if err != nil {
		return nil, err
	}
	serving, err := s.queueRepo.CountByStatus(ctx, userID, model.QueueStatusServing)
	if err != nil {
		return nil, err
	}
	return &model.QueueCounts{WaitingCount: waiting, ServingCount: serving}, nil
}

// UpdateBusinessHours validates and persists a new opening window. Nothing
// is written when validation fails.
func (s *Service) UpdateBusinessHours(ctx context.Context, id uuid.UUID, req *model.UpdateBusinessHoursRequest) (*model.User, error) {
	if err := ValidateBusinessHours(s.validate, req); err != nil {
		return nil, err
	}

	current, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	hours := model.BusinessHours{
		StartHour:    req.StartHour,
		StartMinute:  req.StartMinute,
		EndHour:      req.EndHour,
		EndMinute:    req.EndMinute,
		SundayOpen:   current.BusinessHours.SundayOpen,
		SaturdayOpen: current.BusinessHours.SaturdayOpen,
	}
	if req.SundayOpen != nil {
		hours.SundayOpen = *req.SundayOpen
	}
	if req.SaturdayOpen != nil {
		hours.SaturdayOpen = *req.SaturdayOpen
	}

	user, err := s.userRepo.UpdateBusinessHours(ctx, id, hours)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to update business hours: %w", err)
	}
	return user, nil
}

// ValidateBusinessHours enforces hour/minute ranges and start-before-end.
func ValidateBusinessHours(validate *validator.Validate, req *model.UpdateBusinessHoursRequest) error {
	if err := validate.Struct(req); err != nil {
		return apperrors.BadRequest("hours must be 0-23 and minutes 0-59", err)
	}

	start := req.StartHour*60 + req.StartMinute
	end := req.EndHour*60 + req.EndMinute
	if start >= end {
		return apperrors.BadRequest("end time must be after start time", nil)
	}
	return nil
}
