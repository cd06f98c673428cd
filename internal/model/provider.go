package model

import (
	"time"

	"github.com/google/uuid"
)

// Provider is an entity offering bookable services with recurring availability.
// UserID is the owning account in the identity collaborator.
type Provider struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	Name         string    `db:"name" json:"name"`
	ContactEmail string    `db:"contact_email" json:"contact_email"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ProviderService links a provider to a service it can be booked for.
type ProviderService struct {
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	ServiceID  uuid.UUID `db:"service_id" json:"service_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type OnboardProviderRequest struct {
	Name         string   `json:"name" validate:"required,max=100"`
	ContactEmail string   `json:"contact_email" validate:"required,email"`
	ServiceIDs   []string `json:"service_ids" validate:"omitempty,dive,uuid"`
}
