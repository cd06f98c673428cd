package availability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebookinghq/booking-api/internal/model"
	apperrors "github.com/ebookinghq/booking-api/pkg/errors"
)

// 2024-01-06 is a Saturday, 2024-01-01 a Monday.
var (
	saturday = model.NewDate(2024, 1, 6)
	monday   = model.NewDate(2024, 1, 1)
)

func TestSlotsDefaultStepAndDuration(t *testing.T) {
	f := newFixture(t)
	f.createWindow(t, model.WeekdaySaturday, "09:00", "18:00", nil)

	slots, err := f.svc.Slots(context.Background(), SlotQuery{
		ProviderID: f.provider.ID,
		Date:       saturday,
	})
	require.NoError(t, err)

	// Half-hour grid from 09:00; the last 60-minute slot starting on the grid
	// that still fits before 18:00 starts at 17:00.
	require.Len(t, slots, 17)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "09:30", slots[1])
	assert.Equal(t, "17:00", slots[16])
}

func TestSlotsDurationMustFitWindow(t *testing.T) {
	f := newFixture(t)
	f.createWindow(t, model.WeekdaySaturday, "09:00", "10:00", nil)

	ninety := 90
	slots, err := f.svc.Slots(context.Background(), SlotQuery{
		ProviderID:      f.provider.ID,
		Date:            saturday,
		DurationMinutes: &ninety,
	})
	require.NoError(t, err)
	assert.Empty(t, slots)

	thirty := 30
	slots, err = f.svc.Slots(context.Background(), SlotQuery{
		ProviderID:      f.provider.ID,
		Date:            saturday,
		DurationMinutes: &thirty,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, slots)
}

func TestSlotsSubtractBlockingAppointments(t *testing.T) {
	f := newFixture(t)
	f.createWindow(t, model.WeekdaySaturday, "09:00", "12:00", nil)

	require.NoError(t, f.appointments.Create(context.Background(), &model.Appointment{
		ProviderID:      f.provider.ID,
		ServiceID:       f.service.ID,
		ClientID:        uuid.New(),
		Date:            saturday,
		StartTime:       model.TimeOfDay(600), // 10:00
		DurationMinutes: 60,
		Status:          model.AppointmentStatusPending,
	}))

	slots, err := f.svc.Slots(context.Background(), SlotQuery{
		ProviderID: f.provider.ID,
		Date:       saturday,
	})
	require.NoError(t, err)

	// 10:00 and 10:30 fall inside the blocked interval [10:00, 11:00).
	assert.Equal(t, []string{"09:00", "09:30", "11:00"}, slots)
}

func TestSlotsIgnoreNonBlockingAppointments(t *testing.T) {
	f := newFixture(t)
	f.createWindow(t, model.WeekdaySaturday, "09:00", "11:00", nil)

	require.NoError(t, f.appointments.Create(context.Background(), &model.Appointment{
		ProviderID:      f.provider.ID,
		ServiceID:       f.service.ID,
		ClientID:        uuid.New(),
		Date:            saturday,
		StartTime:       model.TimeOfDay(540),
		DurationMinutes: 60,
		Status:          model.AppointmentStatusCancelled,
	}))

	slots, err := f.svc.Slots(context.Background(), SlotQuery{
		ProviderID: f.provider.ID,
		Date:       saturday,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, slots)
}

func TestSlotsServiceSpecificWindows(t *testing.T) {
	f := newFixture(t)

	serviceID := f.service.ID.String()
	f.createWindow(t, model.WeekdaySaturday, "09:00", "10:00", nil)
	f.createWindow(t, model.WeekdaySaturday, "14:00", "15:00", &serviceID)

	// Without a service only the general window contributes.
	slots, err := f.svc.Slots(context.Background(), SlotQuery{
		ProviderID: f.provider.ID,
		Date:       saturday,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, slots)

	// With the service both windows apply.
	slots, err = f.svc.Slots(context.Background(), SlotQuery{
		ProviderID: f.provider.ID,
		Date:       saturday,
		ServiceID:  &f.service.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "14:00"}, slots)
}

func TestSlotsEmptyWhenNoWindows(t *testing.T) {
	f := newFixture(t)
	f.createWindow(t, model.WeekdaySaturday, "09:00", "18:00", nil)

	// Windows recur weekly; a Monday query sees none of Saturday's windows.
	slots, err := f.svc.Slots(context.Background(), SlotQuery{
		ProviderID: f.provider.ID,
		Date:       monday,
	})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestSlotsCustomStep(t *testing.T) {
	f := newFixture(t)
	f.createWindow(t, model.WeekdaySaturday, "09:00", "11:00", nil)

	step := 60
	slots, err := f.svc.Slots(context.Background(), SlotQuery{
		ProviderID:  f.provider.ID,
		Date:        saturday,
		StepMinutes: &step,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, slots)
}

func TestSlotsRejectNonPositiveParameters(t *testing.T) {
	f := newFixture(t)

	zero := 0
	_, err := f.svc.Slots(context.Background(), SlotQuery{
		ProviderID:  f.provider.ID,
		Date:        saturday,
		StepMinutes: &zero,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnprocessable))

	negative := -30
	_, err = f.svc.Slots(context.Background(), SlotQuery{
		ProviderID:      f.provider.ID,
		Date:            saturday,
		DurationMinutes: &negative,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnprocessable))
}

func TestSlotsUnknownProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Slots(context.Background(), SlotQuery{
		ProviderID: uuid.New(),
		Date:       saturday,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
