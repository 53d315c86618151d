package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/queueflow/queueflow-api/internal/config"
	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/internal/service/schedule"
)

// Service sends owner-facing notifications. Delivery is always best-effort.
type Service interface {
	SendBookingNotification(ctx context.Context, owner *model.User, patient *model.Patient, appointment *model.Appointment) error
}

type smtpService struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

// NewService returns an SMTP-backed notifier, or a no-op one when SMTP is
// not configured.
func NewService(cfg config.SMTPConfig) Service {
	if !cfg.Enabled() {
		return &noopService{}
	}
	return &smtpService{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpService) SendBookingNotification(ctx context.Context, owner *model.User, patient *model.Patient, appointment *model.Appointment) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", owner.Email)
	m.SetHeader("Subject", fmt.Sprintf("New booking for %s", owner.BusinessName))
	m.SetBody("text/plain", fmt.Sprintf(
		"%s booked an appointment on %s.\nPhone: %s\n",
		patient.Name,
		appointment.StartTime.In(schedule.IST).Format(time.RFC1123),
		patient.PhoneNumber,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send booking notification: %w", err)
	}
	return nil
}

type noopService struct{}

func (n *noopService) SendBookingNotification(ctx context.Context, owner *model.User, patient *model.Patient, appointment *model.Appointment) error {
	return nil
}
