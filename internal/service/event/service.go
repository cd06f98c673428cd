package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ebookinghq/booking-api/internal/model"
	"github.com/ebookinghq/booking-api/internal/repository"
)

// Service records domain events in the transactional outbox for the outbox
// processor to publish.
type Service struct {
	repo repository.OutboxRepository
}

func NewService(repo repository.OutboxRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) RecordAppointmentEvent(ctx context.Context, eventType string, apt *model.Appointment, providerEmail string) error {
	payload, err := json.Marshal(model.AppointmentEventPayload{
		AppointmentID: apt.ID,
		ProviderID:    apt.ProviderID,
		ServiceID:     apt.ServiceID,
		ClientID:      apt.ClientID,
		Date:          apt.Date.String(),
		StartTime:     apt.StartTime.String(),
		Status:        apt.Status,
		ProviderEmail: providerEmail,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return s.repo.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	})
}
