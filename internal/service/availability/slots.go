package availability

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ebookinghq/booking-api/internal/model"
	apperrors "github.com/ebookinghq/booking-api/pkg/errors"
)

// DefaultStepMinutes is the candidate grid used when no step is requested.
const DefaultStepMinutes = 30

// SlotQuery describes a free-slot computation for one provider and date.
// ServiceID narrows the applicable windows to general plus that service's
// specific windows; when nil only general windows apply.
type SlotQuery struct {
	ProviderID      uuid.UUID
	Date            model.Date
	ServiceID       *uuid.UUID
	StepMinutes     *int
	DurationMinutes *int
}

// Slots computes the free start times for the query, in ascending wall-clock
// order. Candidates are generated on the step grid inside each applicable
// window, kept only if the full duration fits inside that window, then starts
// falling inside a blocking appointment's interval are removed.
func (s *Service) Slots(ctx context.Context, q SlotQuery) ([]string, error) {
	timer := prometheus.NewTimer(s.metrics.SlotComputeLatency)
	defer timer.ObserveDuration()

	if q.StepMinutes != nil && *q.StepMinutes <= 0 {
		return nil, apperrors.Unprocessable("step must be a positive number of minutes")
	}
	if q.DurationMinutes != nil && *q.DurationMinutes <= 0 {
		return nil, apperrors.Unprocessable("duration must be a positive number of minutes")
	}

	if _, err := s.getProvider(ctx, q.ProviderID); err != nil {
		return nil, err
	}

	var svc *model.Service
	if q.ServiceID != nil {
		var err error
		svc, err = s.services.Get(ctx, *q.ServiceID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.NotFound("service", err)
			}
			return nil, err
		}
		linked, err := s.providers.IsServiceLinked(ctx, q.ProviderID, *q.ServiceID)
		if err != nil {
			return nil, err
		}
		if !linked {
			return nil, apperrors.Unprocessable("provider does not offer this service")
		}
	}

	windows, err := s.windows.ListByProviderAndWeekday(ctx, q.ProviderID, q.Date.Weekday())
	if err != nil {
		return nil, err
	}

	step := DefaultStepMinutes
	if q.StepMinutes != nil {
		step = *q.StepMinutes
	}
	duration := model.EffectiveDuration(q.DurationMinutes, svc)

	starts := map[model.TimeOfDay]struct{}{}
	for _, w := range windows {
		if !applicable(w, q.ServiceID) {
			continue
		}
		for t := w.StartTime; t.Add(step) <= w.EndTime; t = t.Add(step) {
			if t.Add(duration) <= w.EndTime {
				starts[t] = struct{}{}
			}
		}
	}

	blocking, err := s.appointments.ListBlocking(ctx, q.ProviderID, q.Date)
	if err != nil {
		return nil, err
	}
	for _, apt := range blocking {
		blockStart := apt.StartTime
		blockEnd := apt.End()
		for t := range starts {
			if t >= blockStart && t < blockEnd {
				delete(starts, t)
			}
		}
	}

	ordered := make([]model.TimeOfDay, 0, len(starts))
	for t := range starts {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	result := make([]string, len(ordered))
	for i, t := range ordered {
		result[i] = t.String()
	}
	return result, nil
}

// applicable reports whether a window contributes slots for the requested
// service: general windows always do, specific windows only when the request
// names their service.
func applicable(w *model.AvailabilityWindow, serviceID *uuid.UUID) bool {
	if w.IsGeneral() {
		return true
	}
	return serviceID != nil && *w.ServiceID == *serviceID
}
