package notification

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/ebookinghq/booking-api/internal/model"
	"github.com/ebookinghq/booking-api/pkg/logger"
)

// Sender delivers appointment lifecycle notifications to providers.
type Sender interface {
	SendAppointmentEvent(eventType string, payload model.AppointmentEventPayload) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailSender notifies providers by email over SMTP.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

func NewEmailSender(cfg SMTPConfig, logger *logger.Logger) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

var subjects = map[string]string{
	model.EventAppointmentCreated:     "New booking request",
	model.EventAppointmentConfirmed:   "Booking confirmed",
	model.EventAppointmentCancelled:   "Booking cancelled",
	model.EventAppointmentRefused:     "Booking refused",
	model.EventAppointmentRescheduled: "Booking rescheduled",
}

func (s *EmailSender) SendAppointmentEvent(eventType string, payload model.AppointmentEventPayload) error {
	if payload.ProviderEmail == "" {
		return nil
	}
	subject, ok := subjects[eventType]
	if !ok {
		return nil
	}

	body := fmt.Sprintf(
		"Appointment %s on %s at %s is now %s.",
		payload.AppointmentID, payload.Date, payload.StartTime, payload.Status,
	)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", payload.ProviderEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}
