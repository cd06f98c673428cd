package booking

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

// EventRecorder records appointment lifecycle events for asynchronous delivery.
type EventRecorder interface {
	RecordAppointmentEvent(ctx context.Context, eventType string, apt *model.Appointment, providerEmail string) error
}

type Service struct {
	appointments repository.AppointmentRepository
	windows      repository.WindowRepository
	providers    repository.ProviderRepository
	services     repository.ServiceRepository
	events       EventRecorder
	locks        *lock.ProviderLocks
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewService(
	appointments repository.AppointmentRepository,
	windows repository.WindowRepository,
	providers repository.ProviderRepository,
	services repository.ServiceRepository,
	events EventRecorder,
	locks *lock.ProviderLocks,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		appointments: appointments,
		windows:      windows,
		providers:    providers,
		services:     services,
		events:       events,
		locks:        locks,
		logger:       logger,
		metrics:      metrics,
	}
}

// Create books an appointment for the calling client. Preconditions: the
// provider offers the service, some applicable window fully covers the
// requested interval, and no blocking appointment overlaps it. The whole
// check-then-insert sequence runs under the provider's lock.
func (s *Service) Create(ctx context.Context, caller model.Caller, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid provider ID", err)
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid service ID", err)
	}

	provider, err := s.getProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	svc, err := s.getService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	linked, err := s.providers.IsServiceLinked(ctx, providerID, serviceID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apperrors.Unprocessable("provider does not offer this service")
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.Unprocessable("invalid date")
	}
	start, err := model.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, apperrors.Unprocessable("invalid start time")
	}

	duration := model.EffectiveDuration(req.DurationMinutes, svc)
	if start.Add(duration) > model.MinutesPerDay {
		return nil, apperrors.Unprocessable("appointment must not cross midnight")
	}

	unlock := s.locks.Lock(providerID)
	defer unlock()

	if err := s.checkSchedulable(ctx, providerID, serviceID, date, start, duration, uuid.Nil); err != nil {
		if apperrors.IsCode(err, apperrors.ErrConflict) {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	apt := &model.Appointment{
		ProviderID:      providerID,
		ServiceID:       serviceID,
		ClientID:        caller.UserID,
		Date:            date,
		StartTime:       start,
		DurationMinutes: duration,
		Status:          model.AppointmentStatusPending,
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		return nil, err
	}

	s.metrics.AppointmentsCreated.Inc()
	s.recordEvent(ctx, model.EventAppointmentCreated, apt, provider.ContactEmail)
	s.logger.Info("appointment created",
		"appointment_id", apt.ID.String(), "provider_id", providerID.String())
	return apt, nil
}

// Confirm transitions a PENDING appointment to CONFIRMED. Any other source
// state is an invalid transition; confirming twice is an error.
func (s *Service) Confirm(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.Appointment, error) {
	apt, provider, err := s.getWithProvider(ctx, id)
	if err != nil {
		return nil, err
	}
	if provider.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, apperrors.Forbidden("only the provider or an admin can confirm")
	}

	if apt.Status != model.AppointmentStatusPending {
		return nil, apperrors.Unprocessable("invalid transition: appointment must be PENDING")
	}

	apt.Status = model.AppointmentStatusConfirmed
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, model.EventAppointmentConfirmed, apt, provider.ContactEmail)
	return apt, nil
}

// Cancel transitions to CANCELLED from any state. Cancelling an already
// cancelled appointment is a no-op returning the unchanged entity.
func (s *Service) Cancel(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.Appointment, error) {
	apt, provider, err := s.getWithProvider(ctx, id)
	if err != nil {
		return nil, err
	}

	isClient := apt.ClientID == caller.UserID
	isProvider := provider.UserID == caller.UserID
	if !isClient && !isProvider && !caller.IsAdmin() {
		return nil, apperrors.Forbidden("only the client, the provider or an admin can cancel")
	}

	if apt.Status == model.AppointmentStatusCancelled {
		return apt, nil
	}

	apt.Status = model.AppointmentStatusCancelled
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, model.EventAppointmentCancelled, apt, provider.ContactEmail)
	return apt, nil
}

// Refuse transitions a PENDING appointment to REFUSED. Refusing an already
// refused or cancelled appointment is a no-op returning the unchanged entity.
func (s *Service) Refuse(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.Appointment, error) {
	apt, provider, err := s.getWithProvider(ctx, id)
	if err != nil {
		return nil, err
	}
	if provider.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, apperrors.Forbidden("only the provider or an admin can refuse")
	}

	if apt.Status == model.AppointmentStatusRefused || apt.Status == model.AppointmentStatusCancelled {
		return apt, nil
	}

	apt.Status = model.AppointmentStatusRefused
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, model.EventAppointmentRefused, apt, provider.ContactEmail)
	return apt, nil
}

// Reschedule changes service, date and/or time of an appointment. The new
// interval must be covered by an applicable window and free of blocking
// overlaps (excluding the appointment itself). A CONFIRMED appointment drops
// back to PENDING: moving it invalidates the prior confirmation.
func (s *Service) Reschedule(ctx context.Context, caller model.Caller, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	apt, provider, err := s.getWithProvider(ctx, id)
	if err != nil {
		return nil, err
	}
	if provider.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, apperrors.Forbidden("only the provider or an admin can modify an appointment")
	}

	serviceID := apt.ServiceID
	serviceChanged := false
	if req.ServiceID != nil {
		serviceID, err = uuid.Parse(*req.ServiceID)
		if err != nil {
			return nil, apperrors.BadRequest("invalid service ID", err)
		}
		serviceChanged = serviceID != apt.ServiceID
	}

	var svc *model.Service
	if req.ServiceID != nil {
		svc, err = s.getService(ctx, serviceID)
		if err != nil {
			return nil, err
		}
		linked, err := s.providers.IsServiceLinked(ctx, apt.ProviderID, serviceID)
		if err != nil {
			return nil, err
		}
		if !linked {
			return nil, apperrors.Unprocessable("provider does not offer this service")
		}
	}

	date := apt.Date
	if req.Date != nil {
		date, err = model.ParseDate(*req.Date)
		if err != nil {
			return nil, apperrors.Unprocessable("invalid date")
		}
	}
	start := apt.StartTime
	if req.StartTime != nil {
		start, err = model.ParseTimeOfDay(*req.StartTime)
		if err != nil {
			return nil, apperrors.Unprocessable("invalid start time")
		}
	}

	// The effective duration is re-resolved only when an explicit value is
	// given or the service changed; otherwise the persisted value stands.
	duration := apt.DurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
		if duration <= 0 {
			return nil, apperrors.Unprocessable("duration must be a positive number of minutes")
		}
	} else if serviceChanged {
		duration = model.EffectiveDuration(nil, svc)
	}
	if start.Add(duration) > model.MinutesPerDay {
		return nil, apperrors.Unprocessable("appointment must not cross midnight")
	}

	unlock := s.locks.Lock(apt.ProviderID)
	defer unlock()

	if err := s.checkSchedulable(ctx, apt.ProviderID, serviceID, date, start, duration, apt.ID); err != nil {
		if apperrors.IsCode(err, apperrors.ErrConflict) {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	apt.ServiceID = serviceID
	apt.Date = date
	apt.StartTime = start
	apt.DurationMinutes = duration
	if apt.Status == model.AppointmentStatusConfirmed {
		apt.Status = model.AppointmentStatusPending
	}
	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, model.EventAppointmentRescheduled, apt, provider.ContactEmail)
	return apt, nil
}

func (s *Service) ListByClient(ctx context.Context, caller model.Caller, clientID uuid.UUID) ([]*model.Appointment, error) {
	if caller.UserID != clientID && !caller.IsAdmin() {
		return nil, apperrors.Forbidden("only the client or an admin can list these appointments")
	}
	return s.appointments.ListByClient(ctx, clientID)
}

func (s *Service) ListByProvider(ctx context.Context, caller model.Caller, providerID uuid.UUID) ([]*model.Appointment, error) {
	provider, err := s.getProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if provider.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, apperrors.Forbidden("only the provider or an admin can list these appointments")
	}
	return s.appointments.ListByProvider(ctx, providerID)
}

func (s *Service) ListByProviderAndDate(ctx context.Context, caller model.Caller, providerID uuid.UUID, date model.Date) ([]*model.Appointment, error) {
	provider, err := s.getProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if provider.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, apperrors.Forbidden("only the provider or an admin can list these appointments")
	}
	return s.appointments.ListByProviderAndDate(ctx, providerID, date)
}

// checkSchedulable runs the covering-window check and the blocking-overlap
// guard for the given interval. Callers must hold the provider lock.
func (s *Service) checkSchedulable(ctx context.Context, providerID, serviceID uuid.UUID, date model.Date, start model.TimeOfDay, duration int, excludeID uuid.UUID) error {
	windows, err := s.windows.ListByProviderAndWeekday(ctx, providerID, date.Weekday())
	if err != nil {
		return err
	}
	if !coveredByWindow(windows, serviceID, start, duration) {
		return apperrors.Unprocessable("no availability window covers this time")
	}

	blocking, err := s.appointments.ListBlocking(ctx, providerID, date)
	if err != nil {
		return err
	}
	if hasBlockingOverlap(blocking, start, duration, excludeID) {
		return apperrors.Unprocessable("time slot is already booked")
	}
	return nil
}

func (s *Service) getWithProvider(ctx context.Context, id uuid.UUID) (*model.Appointment, *model.Provider, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperrors.NotFound("appointment", err)
		}
		return nil, nil, err
	}
	provider, err := s.getProvider(ctx, apt.ProviderID)
	if err != nil {
		return nil, nil, err
	}
	return apt, provider, nil
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

func (s *Service) getService(ctx context.Context, serviceID uuid.UUID) (*model.Service, error) {
	svc, err := s.services.Get(ctx, serviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, err
	}
	return svc, nil
}

// recordEvent is best effort: a failed outbox write must not fail the booking
// operation that already committed.
func (s *Service) recordEvent(ctx context.Context, eventType string, apt *model.Appointment, providerEmail string) {
	if s.events == nil {
		return
	}
	if err := s.events.RecordAppointmentEvent(ctx, eventType, apt, providerEmail); err != nil {
		s.logger.Error(err, "failed to record appointment event",
			"event_type", eventType, "appointment_id", apt.ID.String())
	}
}
