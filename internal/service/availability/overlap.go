package availability

import (
	"github.com/google/uuid"

	"github.com/ebookinghq/booking-api/internal/model"
	apperrors "github.com/ebookinghq/booking-api/pkg/errors"
)

// rangesOverlap tests two half-open intervals [a1,a2) and [b1,b2). A window
// ending exactly when another starts does not overlap.
func rangesOverlap(a1, a2, b1, b2 model.TimeOfDay) bool {
	return !(a2 <= b1 || a1 >= b2)
}

// checkWindowOverlap enforces the window coexistence rules against all windows
// of the same provider and weekday:
//
//   - a general candidate may not overlap any existing window, general or
//     service-specific;
//   - a service-specific candidate may not overlap a general window or a
//     specific window for the same service; specific windows for different
//     services may overlap freely.
//
// excludeID skips the window being updated.
func checkWindowOverlap(existing []*model.AvailabilityWindow, start, end model.TimeOfDay, serviceID *uuid.UUID, excludeID uuid.UUID) error {
	for _, w := range existing {
		if w.ID == excludeID {
			continue
		}
		if !rangesOverlap(start, end, w.StartTime, w.EndTime) {
			continue
		}
		if serviceID == nil {
			if w.IsGeneral() {
				return apperrors.Conflict("window overlaps an existing general window")
			}
			return apperrors.Conflict("window overlaps an existing service-specific window")
		}
		if w.IsGeneral() {
			return apperrors.Conflict("window overlaps an existing general window")
		}
		if *w.ServiceID == *serviceID {
			return apperrors.Conflict("window overlaps an existing window for the same service")
		}
	}
	return nil
}
