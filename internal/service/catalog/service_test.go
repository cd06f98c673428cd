package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebookinghq/booking-api/internal/model"
	"github.com/ebookinghq/booking-api/internal/repository/memory"
	apperrors "github.com/ebookinghq/booking-api/pkg/errors"
	"github.com/ebookinghq/booking-api/pkg/logger"
)

func newService() (*Service, *memory.ProviderRepository, *memory.ServiceRepository) {
	providers := memory.NewProviderRepository()
	services := memory.NewServiceRepository()
	return NewService(providers, services, logger.NewLogger(nil)), providers, services
}

func TestCreateServiceAdminOnly(t *testing.T) {
	svc, _, _ := newService()

	admin := model.Caller{UserID: uuid.New(), Roles: []string{model.RoleAdmin}}
	thirty := 30
	created, err := svc.CreateService(context.Background(), admin, &model.CreateServiceRequest{
		Name:                   "Consultation",
		DefaultDurationMinutes: &thirty,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, 30, *created.DefaultDurationMinutes)

	provider := model.Caller{UserID: uuid.New(), Roles: []string{model.RoleProvider}}
	_, err = svc.CreateService(context.Background(), provider, &model.CreateServiceRequest{Name: "Massage"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}

func TestOnboardProviderLinksServices(t *testing.T) {
	svc, providers, services := newService()

	catalogService := &model.Service{Name: "Consultation"}
	require.NoError(t, services.Create(context.Background(), catalogService))

	caller := model.Caller{UserID: uuid.New(), Roles: []string{model.RoleProvider}}
	provider, err := svc.OnboardProvider(context.Background(), caller, &model.OnboardProviderRequest{
		Name:         "Dr. Morel",
		ContactEmail: "morel@example.com",
		ServiceIDs:   []string{catalogService.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, caller.UserID, provider.UserID)

	linked, err := providers.IsServiceLinked(context.Background(), provider.ID, catalogService.ID)
	require.NoError(t, err)
	assert.True(t, linked)
}

func TestOnboardProviderUnknownService(t *testing.T) {
	svc, _, _ := newService()

	caller := model.Caller{UserID: uuid.New(), Roles: []string{model.RoleProvider}}
	_, err := svc.OnboardProvider(context.Background(), caller, &model.OnboardProviderRequest{
		Name:         "Dr. Morel",
		ContactEmail: "morel@example.com",
		ServiceIDs:   []string{uuid.New().String()},
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestLinkService(t *testing.T) {
	svc, providers, services := newService()

	catalogService := &model.Service{Name: "Consultation"}
	require.NoError(t, services.Create(context.Background(), catalogService))

	userID := uuid.New()
	provider := &model.Provider{UserID: userID, Name: "Dr. Morel", ContactEmail: "morel@example.com"}
	require.NoError(t, providers.Create(context.Background(), provider))

	owner := model.Caller{UserID: userID, Roles: []string{model.RoleProvider}}
	require.NoError(t, svc.LinkService(context.Background(), owner, provider.ID, catalogService.ID))

	// Linking twice is a conflict.
	err := svc.LinkService(context.Background(), owner, provider.ID, catalogService.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	// Strangers may not link.
	stranger := model.Caller{UserID: uuid.New(), Roles: []string{model.RoleProvider}}
	other := &model.Service{Name: "Massage"}
	require.NoError(t, services.Create(context.Background(), other))
	err = svc.LinkService(context.Background(), stranger, provider.ID, other.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}
