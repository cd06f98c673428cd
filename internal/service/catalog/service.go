package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ebookinghq/booking-api/internal/model"
	"github.com/ebookinghq/booking-api/internal/repository"
	apperrors "github.com/ebookinghq/booking-api/pkg/errors"
	"github.com/ebookinghq/booking-api/pkg/logger"
)

// Service is the provider directory and service catalog: who offers what, who
// owns which provider, and what a service's default duration is. The
// scheduling engine consults it, it performs no scheduling itself.
type Service struct {
	providers repository.ProviderRepository
	services  repository.ServiceRepository
	logger    *logger.Logger
}

func NewService(providers repository.ProviderRepository, services repository.ServiceRepository, logger *logger.Logger) *Service {
	return &Service{providers: providers, services: services, logger: logger}
}

func (s *Service) CreateService(ctx context.Context, caller model.Caller, req *model.CreateServiceRequest) (*model.Service, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("only an admin can manage the service catalog")
	}

	svc := &model.Service{
		Name:                   req.Name,
		Description:            req.Description,
		DefaultDurationMinutes: req.DefaultDurationMinutes,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	s.logger.Info("service created", "service_id", svc.ID.String(), "name", svc.Name)
	return svc, nil
}

func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	svc, err := s.services.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, err
	}
	return svc, nil
}

func (s *Service) ListServices(ctx context.Context) ([]*model.Service, error) {
	return s.services.List(ctx)
}

// OnboardProvider creates a provider owned by the calling user and links the
// requested services.
func (s *Service) OnboardProvider(ctx context.Context, caller model.Caller, req *model.OnboardProviderRequest) (*model.Provider, error) {
	provider := &model.Provider{
		UserID:       caller.UserID,
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
	}
	if err := s.providers.Create(ctx, provider); err != nil {
		return nil, err
	}

	for _, raw := range req.ServiceIDs {
		serviceID, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.BadRequest("invalid service ID", err)
		}
		if _, err := s.GetService(ctx, serviceID); err != nil {
			return nil, err
		}
		if err := s.providers.LinkService(ctx, provider.ID, serviceID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("provider onboarded", "provider_id", provider.ID.String())
	return provider, nil
}

func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	provider, err := s.providers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("provider", err)
		}
		return nil, err
	}
	return provider, nil
}

// LinkService attaches a catalog service to a provider's offering. Linking an
// already linked pair is a Conflict.
func (s *Service) LinkService(ctx context.Context, caller model.Caller, providerID, serviceID uuid.UUID) error {
	provider, err := s.GetProvider(ctx, providerID)
	if err != nil {
		return err
	}
	if provider.UserID != caller.UserID && !caller.IsAdmin() {
		return apperrors.Forbidden("only the provider or an admin can link services")
	}
	if _, err := s.GetService(ctx, serviceID); err != nil {
		return err
	}
	return s.providers.LinkService(ctx, providerID, serviceID)
}
