package booking

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebookinghq/booking-api/internal/lock"
	"github.com/ebookinghq/booking-api/internal/model"
	"github.com/ebookinghq/booking-api/internal/repository/memory"
	"github.com/ebookinghq/booking-api/internal/service/event"
	apperrors "github.com/ebookinghq/booking-api/pkg/errors"
	"github.com/ebookinghq/booking-api/pkg/logger"
	"github.com/ebookinghq/booking-api/pkg/metrics"
)

// 2024-01-01 is a Monday.
const mondayDate = "2024-01-01"

// Registered once to avoid duplicate collector registration across tests.
var testMetrics = metrics.NewMetrics("booking_service_test")

type fixture struct {
	svc          *Service
	appointments *memory.AppointmentRepository
	windows      *memory.WindowRepository
	providers    *memory.ProviderRepository
	services     *memory.ServiceRepository
	outbox       *memory.OutboxRepository

	provider       *model.Provider
	providerCaller model.Caller
	client         model.Caller
	service        *model.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	appointments := memory.NewAppointmentRepository()
	windows := memory.NewWindowRepository()
	providers := memory.NewProviderRepository()
	services := memory.NewServiceRepository()
	outbox := memory.NewOutboxRepository()

	userID := uuid.New()
	provider := &model.Provider{UserID: userID, Name: "Dr. Morel", ContactEmail: "morel@example.com"}
	require.NoError(t, providers.Create(ctx, provider))

	svc := &model.Service{Name: "Consultation"}
	require.NoError(t, services.Create(ctx, svc))
	require.NoError(t, providers.LinkService(ctx, provider.ID, svc.ID))

	// Monday morning, 08:00 to 12:00.
	require.NoError(t, windows.Create(ctx, &model.AvailabilityWindow{
		ProviderID: provider.ID,
		Weekday:    model.WeekdayMonday,
		StartTime:  model.TimeOfDay(480),
		EndTime:    model.TimeOfDay(720),
	}))

	return &fixture{
		svc: NewService(appointments, windows, providers, services,
			event.NewService(outbox), lock.NewProviderLocks(), logger.NewLogger(nil), testMetrics),
		appointments:   appointments,
		windows:        windows,
		providers:      providers,
		services:       services,
		outbox:         outbox,
		provider:       provider,
		providerCaller: model.Caller{UserID: userID, Roles: []string{model.RoleProvider}},
		client:         model.Caller{UserID: uuid.New(), Roles: []string{model.RoleClient}},
		service:        svc,
	}
}

func (f *fixture) createReq(start string) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		ProviderID: f.provider.ID.String(),
		ServiceID:  f.service.ID.String(),
		Date:       mondayDate,
		StartTime:  start,
	}
}

func (f *fixture) book(t *testing.T, start string) *model.Appointment {
	t.Helper()
	apt, err := f.svc.Create(context.Background(), f.client, f.createReq(start))
	require.NoError(t, err)
	return apt
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)

	apt := f.book(t, "10:30")
	assert.NotEqual(t, uuid.Nil, apt.ID)
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, f.client.UserID, apt.ClientID)
	assert.Equal(t, 60, apt.DurationMinutes)

	events := f.outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventAppointmentCreated, events[0].EventType)
}

func TestCreateAppointmentUsesServiceDefaultDuration(t *testing.T) {
	f := newFixture(t)

	fortyFive := 45
	short := &model.Service{Name: "Quick check", DefaultDurationMinutes: &fortyFive}
	require.NoError(t, f.services.Create(context.Background(), short))
	require.NoError(t, f.providers.LinkService(context.Background(), f.provider.ID, short.ID))

	req := f.createReq("09:00")
	req.ServiceID = short.ID.String()
	apt, err := f.svc.Create(context.Background(), f.client, req)
	require.NoError(t, err)
	assert.Equal(t, 45, apt.DurationMinutes)
}

func TestCreateAppointmentMustFitWindow(t *testing.T) {
	f := newFixture(t)

	// 11:30 + 60 minutes runs past the window's 12:00 end.
	_, err := f.svc.Create(context.Background(), f.client, f.createReq("11:30"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnprocessable))
	assert.Contains(t, err.Error(), "no availability window covers this time")

	// Outside the window entirely.
	_, err = f.svc.Create(context.Background(), f.client, f.createReq("14:00"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnprocessable))
}

func TestCreateAppointmentRejectsOverlap(t *testing.T) {
	f := newFixture(t)

	f.book(t, "10:00")

	// Same slot.
	_, err := f.svc.Create(context.Background(), f.client, f.createReq("10:00"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time slot is already booked")

	// Partial overlap with [10:00, 11:00).
	_, err = f.svc.Create(context.Background(), f.client, f.createReq("10:30"))
	require.Error(t, err)

	// Adjacent slots touch but do not overlap.
	_, err = f.svc.Create(context.Background(), f.client, f.createReq("11:00"))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), f.client, f.createReq("09:00"))
	require.NoError(t, err)
}

func TestCreateAppointmentIgnoresCancelled(t *testing.T) {
	f := newFixture(t)

	apt := f.book(t, "10:00")
	_, err := f.svc.Cancel(context.Background(), f.client, apt.ID)
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.client, f.createReq("10:00"))
	require.NoError(t, err)
}

func TestCreateAppointmentRequiresLinkedService(t *testing.T) {
	f := newFixture(t)

	other := &model.Service{Name: "Massage"}
	require.NoError(t, f.services.Create(context.Background(), other))

	req := f.createReq("10:00")
	req.ServiceID = other.ID.String()
	_, err := f.svc.Create(context.Background(), f.client, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider does not offer this service")
}

func TestCreateAppointmentRejectsMidnightRollover(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.windows.Create(context.Background(), &model.AvailabilityWindow{
		ProviderID: f.provider.ID,
		Weekday:    model.WeekdayMonday,
		StartTime:  model.TimeOfDay(1380), // 23:00
		EndTime:    model.TimeOfDay(1439),
	}))

	ninety := 90
	req := f.createReq("23:30")
	req.DurationMinutes = &ninety
	_, err := f.svc.Create(context.Background(), f.client, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not cross midnight")
}

func TestConfirm(t *testing.T) {
	f := newFixture(t)
	apt := f.book(t, "10:00")

	confirmed, err := f.svc.Confirm(context.Background(), f.providerCaller, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)

	// Confirming twice is an invalid transition.
	_, err = f.svc.Confirm(context.Background(), f.providerCaller, apt.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnprocessable))
}

func TestConfirmForbiddenForClient(t *testing.T) {
	f := newFixture(t)
	apt := f.book(t, "10:00")

	_, err := f.svc.Confirm(context.Background(), f.client, apt.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	// An admin may confirm on the provider's behalf.
	admin := model.Caller{UserID: uuid.New(), Roles: []string{model.RoleAdmin}}
	confirmed, err := f.svc.Confirm(context.Background(), admin, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newFixture(t)
	apt := f.book(t, "10:00")

	cancelled, err := f.svc.Cancel(context.Background(), f.client, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)

	before := len(f.outbox.Events())
	again, err := f.svc.Cancel(context.Background(), f.client, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, again.Status)
	assert.Len(t, f.outbox.Events(), before, "no-op cancel must not emit an event")
}

func TestCancelConfirmedAppointment(t *testing.T) {
	f := newFixture(t)
	apt := f.book(t, "10:00")

	_, err := f.svc.Confirm(context.Background(), f.providerCaller, apt.ID)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), f.providerCaller, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
}

func TestRefuse(t *testing.T) {
	f := newFixture(t)
	apt := f.book(t, "10:00")

	refused, err := f.svc.Refuse(context.Background(), f.providerCaller, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusRefused, refused.Status)

	// Refusing again is a no-op.
	again, err := f.svc.Refuse(context.Background(), f.providerCaller, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusRefused, again.Status)
}

func TestRefuseAfterCancelIsNoOp(t *testing.T) {
	f := newFixture(t)
	apt := f.book(t, "10:00")

	_, err := f.svc.Cancel(context.Background(), f.client, apt.ID)
	require.NoError(t, err)

	refused, err := f.svc.Refuse(context.Background(), f.providerCaller, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, refused.Status)
}

func TestRefuseForbiddenForClient(t *testing.T) {
	f := newFixture(t)
	apt := f.book(t, "10:00")

	_, err := f.svc.Refuse(context.Background(), f.client, apt.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}

func TestRescheduleRevertsConfirmation(t *testing.T) {
	f := newFixture(t)
	apt := f.book(t, "10:00")

	_, err := f.svc.Confirm(context.Background(), f.providerCaller, apt.ID)
	require.NoError(t, err)

	start := "09:00"
	moved, err := f.svc.Reschedule(context.Background(), f.providerCaller, apt.ID, &model.RescheduleAppointmentRequest{
		StartTime: &start,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TimeOfDay(540), moved.StartTime)
	assert.Equal(t, model.AppointmentStatusPending, moved.Status,
		"moving a confirmed appointment invalidates the confirmation")
}

func TestRescheduleKeepsPersistedDuration(t *testing.T) {
	f := newFixture(t)

	ninety := 90
	req := f.createReq("08:00")
	req.DurationMinutes = &ninety
	apt, err := f.svc.Create(context.Background(), f.client, req)
	require.NoError(t, err)

	start := "10:00"
	moved, err := f.svc.Reschedule(context.Background(), f.providerCaller, apt.ID, &model.RescheduleAppointmentRequest{
		StartTime: &start,
	})
	require.NoError(t, err)
	assert.Equal(t, 90, moved.DurationMinutes)
}

func TestRescheduleExcludesItselfFromOverlap(t *testing.T) {
	f := newFixture(t)
	apt := f.book(t, "10:00")

	// Moving half an hour overlaps the appointment's own old interval only.
	start := "10:30"
	moved, err := f.svc.Reschedule(context.Background(), f.providerCaller, apt.ID, &model.RescheduleAppointmentRequest{
		StartTime: &start,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TimeOfDay(630), moved.StartTime)
}

func TestRescheduleRejectsOccupiedSlot(t *testing.T) {
	f := newFixture(t)
	f.book(t, "09:00")
	second := f.book(t, "10:00")

	start := "09:30"
	_, err := f.svc.Reschedule(context.Background(), f.providerCaller, second.ID, &model.RescheduleAppointmentRequest{
		StartTime: &start,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time slot is already booked")
}

func TestRescheduleForbiddenForClient(t *testing.T) {
	f := newFixture(t)
	apt := f.book(t, "10:00")

	start := "09:00"
	_, err := f.svc.Reschedule(context.Background(), f.client, apt.ID, &model.RescheduleAppointmentRequest{
		StartTime: &start,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}

func TestListAuthorization(t *testing.T) {
	f := newFixture(t)
	f.book(t, "10:00")

	// Clients see their own list; strangers do not.
	list, err := f.svc.ListByClient(context.Background(), f.client, f.client.UserID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	stranger := model.Caller{UserID: uuid.New(), Roles: []string{model.RoleClient}}
	_, err = f.svc.ListByClient(context.Background(), stranger, f.client.UserID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	// Providers see their own schedule; admins see everything.
	list, err = f.svc.ListByProvider(context.Background(), f.providerCaller, f.provider.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.ListByProvider(context.Background(), stranger, f.provider.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	admin := model.Caller{UserID: uuid.New(), Roles: []string{model.RoleAdmin}}
	date, err := model.ParseDate(mondayDate)
	require.NoError(t, err)
	list, err = f.svc.ListByProviderAndDate(context.Background(), admin, f.provider.ID, date)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestConcurrentCreateSameSlot(t *testing.T) {
	f := newFixture(t)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller := model.Caller{UserID: uuid.New(), Roles: []string{model.RoleClient}}
			_, errs[i] = f.svc.Create(context.Background(), caller, f.createReq("10:00"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one booking may win the slot")

	blocking, err := f.appointments.ListBlocking(context.Background(), f.provider.ID, model.NewDate(2024, 1, 1))
	require.NoError(t, err)
	assert.Len(t, blocking, 1)
}
