package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Appointment lifecycle event types published through the outbox.
const (
	EventAppointmentCreated     = "appointment_created"
	EventAppointmentConfirmed   = "appointment_confirmed"
	EventAppointmentCancelled   = "appointment_cancelled"
	EventAppointmentRefused     = "appointment_refused"
	EventAppointmentRescheduled = "appointment_rescheduled"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       string          `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// AppointmentEventPayload is the outbox payload for appointment lifecycle events.
// ProviderEmail is resolved at recording time so downstream consumers need no
// directory lookup.
type AppointmentEventPayload struct {
	AppointmentID uuid.UUID         `json:"appointment_id"`
	ProviderID    uuid.UUID         `json:"provider_id"`
	ServiceID     uuid.UUID         `json:"service_id"`
	ClientID      uuid.UUID         `json:"client_id"`
	Date          string            `json:"date"`
	StartTime     string            `json:"start_time"`
	Status        AppointmentStatus `json:"status"`
	ProviderEmail string            `json:"provider_email,omitempty"`
}
