package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ebookinghq/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	// WindowRepository stores recurring weekly availability windows.
	WindowRepository interface {
		Create(ctx context.Context, window *model.AvailabilityWindow) error
		Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityWindow, error)
		Update(ctx context.Context, window *model.AvailabilityWindow) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.AvailabilityWindow, error)
		ListByProviderAndWeekday(ctx context.Context, providerID uuid.UUID, weekday model.Weekday) ([]*model.AvailabilityWindow, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		ListByClient(ctx context.Context, clientID uuid.UUID) ([]*model.Appointment, error)
		ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*model.Appointment, error)
		ListByProviderAndDate(ctx context.Context, providerID uuid.UUID, date model.Date) ([]*model.Appointment, error)
		// ListBlocking returns PENDING and CONFIRMED appointments for the
		// provider on the given date, ordered by start time.
		ListBlocking(ctx context.Context, providerID uuid.UUID, date model.Date) ([]*model.Appointment, error)
	}

	// ProviderRepository is the provider directory: ownership and service links.
	ProviderRepository interface {
		Create(ctx context.Context, provider *model.Provider) error
		Get(ctx context.Context, id uuid.UUID) (*model.Provider, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Provider, error)
		LinkService(ctx context.Context, providerID, serviceID uuid.UUID) error
		IsServiceLinked(ctx context.Context, providerID, serviceID uuid.UUID) (bool, error)
	}

	// ServiceRepository is the service catalog.
	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		List(ctx context.Context) ([]*model.Service, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
	}
)
