package availability

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ebookinghq/booking-api/internal/lock"
	"github.com/ebookinghq/booking-api/internal/model"
	"github.com/ebookinghq/booking-api/internal/repository"
	apperrors "github.com/ebookinghq/booking-api/pkg/errors"
	"github.com/ebookinghq/booking-api/pkg/logger"
	"github.com/ebookinghq/booking-api/pkg/metrics"
)

type Service struct {
	windows      repository.WindowRepository
	appointments repository.AppointmentRepository
	providers    repository.ProviderRepository
	services     repository.ServiceRepository
	locks        *lock.ProviderLocks
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewService(
	windows repository.WindowRepository,
	appointments repository.AppointmentRepository,
	providers repository.ProviderRepository,
	services repository.ServiceRepository,
	locks *lock.ProviderLocks,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		windows:      windows,
		appointments: appointments,
		providers:    providers,
		services:     services,
		locks:        locks,
		logger:       logger,
		metrics:      metrics,
	}
}

func (s *Service) ListWindows(ctx context.Context, providerID uuid.UUID) ([]*model.AvailabilityWindow, error) {
	if _, err := s.getProvider(ctx, providerID); err != nil {
		return nil, err
	}
	return s.windows.ListByProvider(ctx, providerID)
}

func (s *Service) CreateWindow(ctx context.Context, caller model.Caller, req *model.CreateWindowRequest) (*model.AvailabilityWindow, error) {
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid provider ID", err)
	}

	provider, err := s.getProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	// Windows are owned exclusively by their provider.
	if provider.UserID != caller.UserID {
		return nil, apperrors.Forbidden("only the owning provider can manage availability windows")
	}

	start, end, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	serviceID, err := s.resolveWindowService(ctx, providerID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(providerID)
	defer unlock()

	existing, err := s.windows.ListByProviderAndWeekday(ctx, providerID, req.Weekday)
	if err != nil {
		return nil, err
	}
	if err := checkWindowOverlap(existing, start, end, serviceID, uuid.Nil); err != nil {
		return nil, err
	}

	window := &model.AvailabilityWindow{
		ProviderID: providerID,
		Weekday:    req.Weekday,
		StartTime:  start,
		EndTime:    end,
		ServiceID:  serviceID,
	}
	if err := s.windows.Create(ctx, window); err != nil {
		return nil, err
	}

	s.logger.Info("availability window created",
		"window_id", window.ID.String(), "provider_id", providerID.String())
	return window, nil
}

func (s *Service) UpdateWindow(ctx context.Context, caller model.Caller, windowID uuid.UUID, req *model.UpdateWindowRequest) (*model.AvailabilityWindow, error) {
	window, err := s.getWindow(ctx, windowID)
	if err != nil {
		return nil, err
	}

	provider, err := s.getProvider(ctx, window.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider.UserID != caller.UserID {
		return nil, apperrors.Forbidden("only the owning provider can manage availability windows")
	}

	start, end, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	serviceID, err := s.resolveWindowService(ctx, window.ProviderID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(window.ProviderID)
	defer unlock()

	existing, err := s.windows.ListByProviderAndWeekday(ctx, window.ProviderID, req.Weekday)
	if err != nil {
		return nil, err
	}
	if err := checkWindowOverlap(existing, start, end, serviceID, window.ID); err != nil {
		return nil, err
	}

	window.Weekday = req.Weekday
	window.StartTime = start
	window.EndTime = end
	window.ServiceID = serviceID
	if err := s.windows.Update(ctx, window); err != nil {
		return nil, err
	}
	return window, nil
}

func (s *Service) DeleteWindow(ctx context.Context, caller model.Caller, windowID uuid.UUID) error {
	window, err := s.getWindow(ctx, windowID)
	if err != nil {
		return err
	}

	provider, err := s.getProvider(ctx, window.ProviderID)
	if err != nil {
		return err
	}
	if provider.UserID != caller.UserID {
		return apperrors.Forbidden("only the owning provider can manage availability windows")
	}

	return s.windows.Delete(ctx, windowID)
}

func (s *Service) getProvider(ctx context.Context, providerID uuid.UUID) (*model.Provider, error) {
	provider, err := s.providers.Get(ctx, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("provider", err)
		}
		return nil, err
	}
	return provider, nil
}

func (s *Service) getWindow(ctx context.Context, windowID uuid.UUID) (*model.AvailabilityWindow, error) {
	window, err := s.windows.Get(ctx, windowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("availability window", err)
		}
		return nil, err
	}
	return window, nil
}

// resolveWindowService validates an optional window service reference: the
// service must exist and the provider must be linked to it.
func (s *Service) resolveWindowService(ctx context.Context, providerID uuid.UUID, raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	serviceID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperrors.BadRequest("invalid service ID", err)
	}
	if _, err := s.services.Get(ctx, serviceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, err
	}
	linked, err := s.providers.IsServiceLinked(ctx, providerID, serviceID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apperrors.Unprocessable("provider does not offer this service")
	}
	return &serviceID, nil
}

func parseRange(startRaw, endRaw string) (model.TimeOfDay, model.TimeOfDay, error) {
	start, err := model.ParseTimeOfDay(startRaw)
	if err != nil {
		return 0, 0, apperrors.Unprocessable("invalid start time")
	}
	end, err := model.ParseTimeOfDay(endRaw)
	if err != nil {
		return 0, 0, apperrors.Unprocessable("invalid end time")
	}
	if !start.Before(end) {
		return 0, 0, apperrors.Unprocessable("start time must be before end time")
	}
	return start, end, nil
}
