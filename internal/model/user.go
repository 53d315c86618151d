package model

import (
	"time"
)

// User role constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// BusinessHours holds the daily opening window of a business. Hours and
// minutes are interpreted in the business's local time (fixed UTC+5:30).
type BusinessHours struct {
	StartHour    int  `json:"start_hour" db:"start_hour" validate:"min=0,max=23"`
	StartMinute  int  `json:"start_minute" db:"start_minute" validate:"min=0,max=59"`
	EndHour      int  `json:"end_hour" db:"end_hour" validate:"min=0,max=23"`
	EndMinute    int  `json:"end_minute" db:"end_minute" validate:"min=0,max=59"`
	SundayOpen   bool `json:"sunday_open" db:"sunday_open"`
	SaturdayOpen bool `json:"saturday_open" db:"saturday_open"`
}

// StartMinutes returns the opening time as minutes since midnight.
func (h BusinessHours) StartMinutes() int {
	return h.StartHour*60 + h.StartMinute
}

// EndMinutes returns the closing time as minutes since midnight.
func (h BusinessHours) EndMinutes() int {
	return h.EndHour*60 + h.EndMinute
}

// DefaultBusinessHours is 09:00-17:00, weekends closed.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{StartHour: 9, EndHour: 17}
}

// User represents a tenant: the business account operating a queue and an
// appointment calendar.
type User struct {
	Base
	Email            string        `json:"email" db:"email"`
	PasswordHash     string        `json:"-" db:"password_hash"`
	BusinessName     string        `json:"business_name" db:"business_name"`
	BusinessSlug     string        `json:"business_slug" db:"business_slug"`
	Role             string        `json:"role" db:"role"`
	TotalPatients    int           `json:"total_patients" db:"total_patients"`
	DailyPatients    int           `json:"daily_patients" db:"daily_patients"`
	CanceledPatients int           `json:"canceled_patients" db:"canceled_patients"`
	LastResetDate    time.Time     `json:"last_reset_date" db:"last_reset_date"`
	BusinessHours    BusinessHours `json:"business_hours" db:"hours"`
}

// SignupRequest represents tenant registration parameters
type SignupRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=4"`
	BusinessName string `json:"business_name" binding:"required"`
}

// LoginRequest represents login parameters
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateRoleRequest represents an admin role change
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}

// UpdateBusinessHoursRequest carries a business-hours update. Range checks
// live on the validate tags; start-before-end is enforced in the service.
type UpdateBusinessHoursRequest struct {
	StartHour    int   `json:"start_hour" validate:"min=0,max=23"`
	StartMinute  int   `json:"start_minute" validate:"min=0,max=59"`
	EndHour      int   `json:"end_hour" validate:"min=0,max=23"`
	EndMinute    int   `json:"end_minute" validate:"min=0,max=59"`
	SundayOpen   *bool `json:"sunday_open"`
	SaturdayOpen *bool `json:"saturday_open"`
}

// PatientStats is the owner-facing counter snapshot
type PatientStats struct {
	TotalPatients    int       `json:"total_patients"`
	DailyPatients    int       `json:"daily_patients"`
	CanceledPatients int       `json:"canceled_patients"`
	LastResetDate    time.Time `json:"last_reset_date"`
}

// QueueCounts is the public waiting/serving count snapshot for a business
type QueueCounts struct {
	WaitingCount int `json:"waiting_count"`
	ServingCount int `json:"serving_count"`
}
