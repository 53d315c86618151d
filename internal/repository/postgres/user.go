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

const userColumns = `
	id, email, password_hash, business_name, business_slug, role,
	total_patients, daily_patients, canceled_patients, last_reset_date,
	start_hour AS "hours.start_hour", start_minute AS "hours.start_minute",
	end_hour AS "hours.end_hour", end_minute AS "hours.end_minute",
	sunday_open AS "hours.sunday_open", saturday_open AS "hours.saturday_open",
	created_at, updated_at
`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, business_name, business_slug, role,
			total_patients, daily_patients, canceled_patients, last_reset_date,
			start_hour, start_minute, end_hour, end_minute,
			sunday_open, saturday_open, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.LastResetDate = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.BusinessName,
		user.BusinessSlug,
		user.Role,
		user.TotalPatients,
		user.DailyPatients,
		user.CanceledPatients,
		user.LastResetDate,
		user.BusinessHours.StartHour,
		user.BusinessHours.StartMinute,
		user.BusinessHours.EndHour,
		user.BusinessHours.EndMinute,
		user.BusinessHours.SundayOpen,
		user.BusinessHours.SaturdayOpen,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetBySlug(ctx context.Context, slug string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE business_slug = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by slug: %w", err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`

	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error) {
	query := `
		UPDATE users SET role = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + userColumns

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, role, time.Now(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateBusinessHours(ctx context.Context, id uuid.UUID, hours model.BusinessHours) (*model.User, error) {
	query := `
		UPDATE users SET
			start_hour = $1, start_minute = $2, end_hour = $3, end_minute = $4,
			sunday_open = $5, saturday_open = $6, updated_at = $7
		WHERE id = $8
		RETURNING ` + userColumns

	var user model.User
	err := r.db.GetContext(ctx, &user, query,
		hours.StartHour,
		hours.StartMinute,
		hours.EndHour,
		hours.EndMinute,
		hours.SundayOpen,
		hours.SaturdayOpen,
		time.Now(),
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update business hours: %w", err)
	}
	return &user, nil
}

func (r *userRepository) ResetDailyCountIfNeeded(ctx context.Context, id uuid.UUID, startOfDay time.Time) error {
	// Conditional update: the guard on last_reset_date makes the reset fire
	// exactly once per calendar day no matter how many requests race here.
	query := `
		UPDATE users SET daily_patients = 0, last_reset_date = $2, updated_at = $2
		WHERE id = $1 AND last_reset_date < $2
	`
	if _, err := r.db.ExecContext(ctx, query, id, startOfDay); err != nil {
		return fmt.Errorf("failed to reset daily count: %w", err)
	}
	return nil
}

func (r *userRepository) IncrementPatientCounts(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users SET
			total_patients = total_patients + 1,
			daily_patients = daily_patients + 1,
			updated_at = $2
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to increment patient counts: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) IncrementCanceledCount(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users SET canceled_patients = canceled_patients + 1, updated_at = $2
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to increment canceled count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
