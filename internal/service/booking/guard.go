package booking

import (
	"github.com/google/uuid"

	"github.com/ebookinghq/booking-api/internal/model"
)

// hasBlockingOverlap tests [start, start+duration) against the blocking
// interval of every PENDING or CONFIRMED appointment, half-open on both sides.
// excludeID skips the appointment being rescheduled.
func hasBlockingOverlap(appointments []*model.Appointment, start model.TimeOfDay, durationMinutes int, excludeID uuid.UUID) bool {
	end := start.Add(durationMinutes)
	if end > model.MinutesPerDay {
		end = model.MinutesPerDay
	}
	for _, apt := range appointments {
		if apt.ID == excludeID {
			continue
		}
		if !apt.Status.Blocking() {
			continue
		}
		if !(end <= apt.StartTime || start >= apt.End()) {
			return true
		}
	}
	return false
}

// coveredByWindow reports whether some applicable window (general, or specific
// to the requested service) fully contains [start, start+duration).
func coveredByWindow(windows []*model.AvailabilityWindow, serviceID uuid.UUID, start model.TimeOfDay, durationMinutes int) bool {
	for _, w := range windows {
		if !w.IsGeneral() && *w.ServiceID != serviceID {
			continue
		}
		if w.Covers(start, durationMinutes) {
			return true
		}
	}
	return false
}
