package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/internal/repository"
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, user_id, patient_id, start_time, end_time, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.UserID,
		appointment.PatientID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		// The partial unique index on (user_id, start_time) for scheduled
		// appointments closes the check-then-insert race.
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) ExistsScheduledAt(ctx context.Context, userID uuid.UUID, startTime time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE user_id = $1 AND status = $2 AND start_time = $3
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID, model.AppointmentStatusScheduled, startTime)
	if err != nil {
		return false, fmt.Errorf("failed to check existing appointment: %w", err)
	}
	return exists, nil
}

func (r *appointmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.AppointmentDetail, error) {
	query := `
		SELECT a.id, a.user_id, a.patient_id, a.start_time, a.end_time,
		       a.status, a.created_at, a.updated_at,
		       p.id AS "patient.id", p.user_id AS "patient.user_id",
		       p.name AS "patient.name", p.phone_number AS "patient.phone_number",
		       p.age AS "patient.age", p.visit_date AS "patient.visit_date",
		       p.entry_time AS "patient.entry_time",
		       p.post_consultation AS "patient.post_consultation",
		       p.completion_time AS "patient.completion_time",
		       p.self_registered AS "patient.self_registered",
		       p.self_canceled AS "patient.self_canceled",
		       p.canceled AS "patient.canceled",
		       p.created_at AS "patient.created_at"
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.user_id = $1
		ORDER BY a.start_time ASC
	`

	var appointments []*model.AppointmentDetail
	if err := r.db.SelectContext(ctx, &appointments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListScheduledBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, user_id, patient_id, start_time, end_time, status,
		       created_at, updated_at
		FROM appointments
		WHERE user_id = $1 AND status = $2 AND start_time >= $3 AND start_time < $4
		ORDER BY start_time ASC
	`

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query,
		userID, model.AppointmentStatusScheduled, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Transition(ctx context.Context, id, userID uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error) {
	query := `
		UPDATE appointments SET status = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4 AND status = $5
		RETURNING id, user_id, patient_id, start_time, end_time, status,
		          created_at, updated_at
	`

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, to, time.Now(), id, userID, from)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to transition appointment: %w", err)
	}
	return &appointment, nil
}
