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

const patientColumns = `
	id, user_id, name, phone_number, age, visit_date, entry_time,
	post_consultation, completion_time, self_registered, self_canceled,
	canceled, created_at
`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, user_id, name, phone_number, age, visit_date, entry_time,
			post_consultation, completion_time, self_registered, self_canceled,
			canceled, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.UserID,
		patient.Name,
		patient.PhoneNumber,
		patient.Age,
		patient.VisitDate,
		patient.EntryTime,
		patient.PostConsult,
		patient.CompletionTime,
		patient.SelfRegistered,
		patient.SelfCanceled,
		patient.Canceled,
		patient.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	args := []interface{}{id}

	if owner != nil {
		query += ` AND user_id = $2`
		args = append(args, *owner)
	}

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) SetPostConsultation(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE patients SET post_consultation = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to set post consultation time: %w", err)
	}
	return nil
}

func (r *patientRepository) SetCompletionTime(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE patients SET completion_time = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to set completion time: %w", err)
	}
	return nil
}

func (r *patientRepository) MarkCanceled(ctx context.Context, id uuid.UUID, selfCanceled bool) error {
	query := `UPDATE patients SET canceled = TRUE, self_canceled = self_canceled OR $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, selfCanceled); err != nil {
		return fmt.Errorf("failed to mark patient canceled: %w", err)
	}
	return nil
}

func (r *patientRepository) ResetEntry(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE patients SET entry_time = $2, visit_date = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to reset patient entry time: %w", err)
	}
	return nil
}
