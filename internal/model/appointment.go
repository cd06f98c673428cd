package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusRefused   AppointmentStatus = "REFUSED"
)

// Blocking reports whether an appointment in this status occupies its time slot.
// Only PENDING and CONFIRMED appointments block future bookings.
func (s AppointmentStatus) Blocking() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

// Appointment is a single booking of a provider's service by a client.
// DurationMinutes holds the effective duration resolved at creation time, so
// conflict checks stay stable even if the service's default changes later.
type Appointment struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	ProviderID      uuid.UUID         `db:"provider_id" json:"provider_id"`
	ServiceID       uuid.UUID         `db:"service_id" json:"service_id"`
	ClientID        uuid.UUID         `db:"client_id" json:"client_id"`
	Date            Date              `db:"appointment_date" json:"date"`
	StartTime       TimeOfDay         `db:"start_time" json:"start_time"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Status          AppointmentStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// End returns the exclusive end of the blocking interval, clamped to end of day.
func (a *Appointment) End() TimeOfDay {
	end := a.StartTime.Add(a.DurationMinutes)
	if end > MinutesPerDay {
		return MinutesPerDay
	}
	return end
}

type CreateAppointmentRequest struct {
	ProviderID      string `json:"provider_id" validate:"required,uuid"`
	ServiceID       string `json:"service_id" validate:"required,uuid"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,gt=0"`
}

// RescheduleAppointmentRequest carries the fields of an appointment that may
// change; nil fields keep their current value.
type RescheduleAppointmentRequest struct {
	ServiceID       *string `json:"service_id" validate:"omitempty,uuid"`
	Date            *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime       *string `json:"start_time"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gt=0"`
}
