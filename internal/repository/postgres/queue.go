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

const queueDetailColumns = `
	q.id, q.user_id, q.patient_id, q.status, q.time_waited, q.time_served,
	q.created_at, q.updated_at,
	p.id AS "patient.id", p.user_id AS "patient.user_id",
	p.name AS "patient.name", p.phone_number AS "patient.phone_number",
	p.age AS "patient.age", p.visit_date AS "patient.visit_date",
	p.entry_time AS "patient.entry_time",
	p.post_consultation AS "patient.post_consultation",
	p.completion_time AS "patient.completion_time",
	p.self_registered AS "patient.self_registered",
	p.self_canceled AS "patient.self_canceled",
	p.canceled AS "patient.canceled", p.created_at AS "patient.created_at"
`

func (r *queueRepository) Create(ctx context.Context, entry *model.QueueEntry) error {
	query := `
		INSERT INTO queue_entries (
			id, user_id, patient_id, status, time_waited, time_served,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.PatientID,
		entry.Status,
		entry.TimeWaited,
		entry.TimeServed,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create queue entry: %w", err)
	}
	return nil
}

func (r *queueRepository) Transition(ctx context.Context, patientID uuid.UUID, from, to model.QueueEntryStatus, owner *uuid.UUID) (*model.QueueEntry, error) {
	// The status guard in the WHERE clause is the whole state machine: a
	// wrong source state, a prior transition or a non-owner caller all match
	// zero rows and come back as ErrNotFound.
	query := `
		UPDATE queue_entries SET status = $1, updated_at = $2
		WHERE patient_id = $3 AND status = $4
	`
	args := []interface{}{to, time.Now(), patientID, from}

	if owner != nil {
		query += ` AND user_id = $5`
		args = append(args, *owner)
	}

	query += `
		RETURNING id, user_id, patient_id, status, time_waited, time_served,
		          created_at, updated_at
	`

	var entry model.QueueEntry
	if err := r.db.GetContext(ctx, &entry, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to transition queue entry: %w", err)
	}
	return &entry, nil
}

func (r *queueRepository) ListByStatus(ctx context.Context, owner *uuid.UUID, status model.QueueEntryStatus) ([]*model.QueueEntryDetail, error) {
	query := `
		SELECT ` + queueDetailColumns + `
		FROM queue_entries q
		JOIN patients p ON p.id = q.patient_id
		WHERE q.status = $1
	`
	args := []interface{}{status}

	if owner != nil {
		query += ` AND q.user_id = $2`
		args = append(args, *owner)
	}

	// Waiting entries read oldest-first; everything else by last activity.
	if status == model.QueueStatusWaiting {
		query += ` ORDER BY q.created_at ASC`
	} else {
		query += ` ORDER BY q.updated_at ASC`
	}

	var entries []*model.QueueEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}
	return entries, nil
}

func (r *queueRepository) ListAll(ctx context.Context, owner *uuid.UUID) ([]*model.QueueEntryDetail, error) {
	query := `
		SELECT ` + queueDetailColumns + `
		FROM queue_entries q
		JOIN patients p ON p.id = q.patient_id
	`
	var args []interface{}

	if owner != nil {
		query += ` WHERE q.user_id = $1`
		args = append(args, *owner)
	}

	query += ` ORDER BY q.updated_at ASC`

	var entries []*model.QueueEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}
	return entries, nil
}

func (r *queueRepository) CountByStatus(ctx context.Context, userID uuid.UUID, status model.QueueEntryStatus) (int, error) {
	query := `SELECT COUNT(*) FROM queue_entries WHERE user_id = $1 AND status = $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, status); err != nil {
		return 0, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return count, nil
}

func (r *queueRepository) PublicWaitlist(ctx context.Context, userID uuid.UUID) ([]*model.PublicQueueEntry, error) {
	// Exposes the patient's name only; everything else stays private.
	query := `
		SELECT q.id, q.patient_id, p.name AS patient_name, q.status, q.created_at
		FROM queue_entries q
		JOIN patients p ON p.id = q.patient_id
		WHERE q.user_id = $1 AND q.status = $2
		ORDER BY q.created_at ASC
	`

	var entries []*model.PublicQueueEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID, model.QueueStatusWaiting); err != nil {
		return nil, fmt.Errorf("failed to fetch public waitlist: %w", err)
	}
	return entries, nil
}
