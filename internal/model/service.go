package model

import (
	"time"

	"github.com/google/uuid"
)

// Service is a bookable catalog entry. DefaultDurationMinutes is optional; when
// absent the engine falls back to the system default of 60 minutes.
type Service struct {
	ID                     uuid.UUID `db:"id" json:"id"`
	Name                   string    `db:"name" json:"name"`
	Description            string    `db:"description" json:"description,omitempty"`
	DefaultDurationMinutes *int      `db:"default_duration_minutes" json:"default_duration_minutes,omitempty"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

type CreateServiceRequest struct {
	Name                   string `json:"name" validate:"required,max=100"`
	Description            string `json:"description" validate:"max=1000"`
	DefaultDurationMinutes *int   `json:"default_duration_minutes" validate:"omitempty,gt=0"`
}
