// Package memory holds in-memory repository implementations backing the
// service test suites. They mirror the postgres repositories' contract,
// including sql.ErrNoRows on missing rows and ID assignment on create.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ebookinghq/booking-api/internal/model"
	apperrors "github.com/ebookinghq/booking-api/pkg/errors"
)

type WindowRepository struct {
	mu      sync.Mutex
	windows map[uuid.UUID]*model.AvailabilityWindow
}

func NewWindowRepository() *WindowRepository {
	return &WindowRepository{windows: make(map[uuid.UUID]*model.AvailabilityWindow)}
}

func (r *WindowRepository) Create(_ context.Context, window *model.AvailabilityWindow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	window.ID = uuid.New()
	window.CreatedAt = time.Now()
	window.UpdatedAt = time.Now()
	clone := *window
	r.windows[window.ID] = &clone
	return nil
}

func (r *WindowRepository) Get(_ context.Context, id uuid.UUID) (*model.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *w
	return &clone, nil
}

func (r *WindowRepository) Update(_ context.Context, window *model.AvailabilityWindow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[window.ID]; !ok {
		return sql.ErrNoRows
	}
	window.UpdatedAt = time.Now()
	clone := *window
	r.windows[window.ID] = &clone
	return nil
}

func (r *WindowRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.windows, id)
	return nil
}

func (r *WindowRepository) ListByProvider(_ context.Context, providerID uuid.UUID) ([]*model.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AvailabilityWindow
	for _, w := range r.windows {
		if w.ProviderID == providerID {
			clone := *w
			out = append(out, &clone)
		}
	}
	sortWindows(out)
	return out, nil
}

func (r *WindowRepository) ListByProviderAndWeekday(_ context.Context, providerID uuid.UUID, weekday model.Weekday) ([]*model.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AvailabilityWindow
	for _, w := range r.windows {
		if w.ProviderID == providerID && w.Weekday == weekday {
			clone := *w
			out = append(out, &clone)
		}
	}
	sortWindows(out)
	return out, nil
}

func sortWindows(windows []*model.AvailabilityWindow) {
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].StartTime < windows[j].StartTime
	})
}

type AppointmentRepository struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *AppointmentRepository) Create(_ context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()
	clone := *appointment
	r.appointments[appointment.ID] = &clone
	return nil
}

func (r *AppointmentRepository) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (r *AppointmentRepository) Update(_ context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[appointment.ID]; !ok {
		return sql.ErrNoRows
	}
	appointment.UpdatedAt = time.Now()
	clone := *appointment
	r.appointments[appointment.ID] = &clone
	return nil
}

func (r *AppointmentRepository) ListByClient(_ context.Context, clientID uuid.UUID) ([]*model.Appointment, error) {
	return r.list(func(a *model.Appointment) bool {
		return a.ClientID == clientID
	})
}

func (r *AppointmentRepository) ListByProvider(_ context.Context, providerID uuid.UUID) ([]*model.Appointment, error) {
	return r.list(func(a *model.Appointment) bool {
		return a.ProviderID == providerID
	})
}

func (r *AppointmentRepository) ListByProviderAndDate(_ context.Context, providerID uuid.UUID, date model.Date) ([]*model.Appointment, error) {
	return r.list(func(a *model.Appointment) bool {
		return a.ProviderID == providerID && a.Date.String() == date.String()
	})
}

func (r *AppointmentRepository) ListBlocking(_ context.Context, providerID uuid.UUID, date model.Date) ([]*model.Appointment, error) {
	return r.list(func(a *model.Appointment) bool {
		return a.ProviderID == providerID && a.Date.String() == date.String() && a.Status.Blocking()
	})
}

func (r *AppointmentRepository) list(match func(*model.Appointment) bool) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.appointments {
		if match(a) {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

type ProviderRepository struct {
	mu        sync.Mutex
	providers map[uuid.UUID]*model.Provider
	links     map[uuid.UUID]map[uuid.UUID]bool
}

func NewProviderRepository() *ProviderRepository {
	return &ProviderRepository{
		providers: make(map[uuid.UUID]*model.Provider),
		links:     make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (r *ProviderRepository) Create(_ context.Context, provider *model.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if provider.ID == uuid.Nil {
		provider.ID = uuid.New()
	}
	provider.CreatedAt = time.Now()
	provider.UpdatedAt = time.Now()
	clone := *provider
	r.providers[provider.ID] = &clone
	return nil
}

func (r *ProviderRepository) Get(_ context.Context, id uuid.UUID) (*model.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (r *ProviderRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.providers {
		if p.UserID == userID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *ProviderRepository) LinkService(_ context.Context, providerID, serviceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.links[providerID] == nil {
		r.links[providerID] = make(map[uuid.UUID]bool)
	}
	if r.links[providerID][serviceID] {
		return apperrors.Conflict("provider is already linked to this service")
	}
	r.links[providerID][serviceID] = true
	return nil
}

func (r *ProviderRepository) IsServiceLinked(_ context.Context, providerID, serviceID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.links[providerID][serviceID], nil
}

type ServiceRepository struct {
	mu       sync.Mutex
	services map[uuid.UUID]*model.Service
}

func NewServiceRepository() *ServiceRepository {
	return &ServiceRepository{services: make(map[uuid.UUID]*model.Service)}
}

func (r *ServiceRepository) Create(_ context.Context, service *model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	service.CreatedAt = time.Now()
	service.UpdatedAt = time.Now()
	clone := *service
	r.services[service.ID] = &clone
	return nil
}

func (r *ServiceRepository) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (r *ServiceRepository) List(_ context.Context) ([]*model.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Service
	for _, s := range r.services {
		clone := *s
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type OutboxRepository struct {
	mu     sync.Mutex
	events []*model.OutboxEvent
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{}
}

func (r *OutboxRepository) Create(_ context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = string(model.OutboxStatusPending)
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	clone := *event
	r.events = append(r.events, &clone)
	return nil
}

func (r *OutboxRepository) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.OutboxEvent
	for _, e := range r.events {
		if e.Status == string(model.OutboxStatusPending) {
			clone := *e
			out = append(out, &clone)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *OutboxRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			e.Status = string(status)
			e.ErrorMessage = errorMessage
			e.UpdatedAt = time.Now()
			return nil
		}
	}
	return sql.ErrNoRows
}

// Events returns a snapshot of everything recorded, for assertions.
func (r *OutboxRepository) Events() []*model.OutboxEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.OutboxEvent, 0, len(r.events))
	for _, e := range r.events {
		clone := *e
		out = append(out, &clone)
	}
	return out
}
