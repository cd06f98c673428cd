package model

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityWindow is a recurring weekly time range during which a provider
// accepts bookings. A nil ServiceID means the window is general and covers every
// service the provider offers; a non-nil ServiceID ties it to that one service.
type AvailabilityWindow struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ProviderID uuid.UUID  `db:"provider_id" json:"provider_id"`
	Weekday    Weekday    `db:"weekday" json:"weekday"`
	StartTime  TimeOfDay  `db:"start_time" json:"start_time"`
	EndTime    TimeOfDay  `db:"end_time" json:"end_time"`
	ServiceID  *uuid.UUID `db:"service_id" json:"service_id,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

func (w *AvailabilityWindow) IsGeneral() bool {
	return w.ServiceID == nil
}

// Covers reports whether [start, start+duration) fits entirely inside the window.
func (w *AvailabilityWindow) Covers(start TimeOfDay, durationMinutes int) bool {
	return start >= w.StartTime && start.Add(durationMinutes) <= w.EndTime
}

type CreateWindowRequest struct {
	ProviderID string  `json:"provider_id" validate:"required,uuid"`
	Weekday    Weekday `json:"weekday" validate:"required"`
	StartTime  string  `json:"start_time" validate:"required"`
	EndTime    string  `json:"end_time" validate:"required"`
	ServiceID  *string `json:"service_id" validate:"omitempty,uuid"`
}

type UpdateWindowRequest struct {
	Weekday   Weekday `json:"weekday" validate:"required"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time" validate:"required"`
	ServiceID *string `json:"service_id" validate:"omitempty,uuid"`
}
