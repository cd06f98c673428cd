package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"14:30:00", 870, false},
		{"24:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:00", TimeOfDay(540).String())
	assert.Equal(t, "00:05", TimeOfDay(5).String())
	assert.Equal(t, "23:59", TimeOfDay(1439).String())
}

func TestTimeOfDayJSON(t *testing.T) {
	data, err := json.Marshal(TimeOfDay(570))
	require.NoError(t, err)
	assert.Equal(t, `"09:30"`, string(data))

	var parsed TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"17:45"`), &parsed))
	assert.Equal(t, TimeOfDay(1065), parsed)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-06")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-06", d.String())
	assert.Equal(t, WeekdaySaturday, d.Weekday())

	_, err = ParseDate("06/01/2024")
	assert.Error(t, err)
}

func TestWeekdayOfIsTotal(t *testing.T) {
	// 2024-01-01 was a Monday; walk a full week.
	for i := 0; i < 7; i++ {
		day := time.Date(2024, time.January, 1+i, 0, 0, 0, 0, time.UTC)
		assert.NotEmpty(t, WeekdayOf(day))
	}
	assert.Equal(t, WeekdayMonday, WeekdayOf(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, WeekdaySunday, WeekdayOf(time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)))
}

func TestAppointmentEndClampedToEndOfDay(t *testing.T) {
	apt := &Appointment{StartTime: TimeOfDay(1400), DurationMinutes: 90}
	assert.Equal(t, TimeOfDay(MinutesPerDay), apt.End())

	apt = &Appointment{StartTime: TimeOfDay(540), DurationMinutes: 60}
	assert.Equal(t, TimeOfDay(600), apt.End())
}

func TestEffectiveDuration(t *testing.T) {
	forty := 40
	ninety := 90

	assert.Equal(t, 90, EffectiveDuration(&ninety, &Service{DefaultDurationMinutes: &forty}))
	assert.Equal(t, 40, EffectiveDuration(nil, &Service{DefaultDurationMinutes: &forty}))
	assert.Equal(t, DefaultAppointmentDurationMinutes, EffectiveDuration(nil, &Service{}))
	assert.Equal(t, DefaultAppointmentDurationMinutes, EffectiveDuration(nil, nil))
}

func TestBlockingStatuses(t *testing.T) {
	assert.True(t, AppointmentStatusPending.Blocking())
	assert.True(t, AppointmentStatusConfirmed.Blocking())
	assert.False(t, AppointmentStatusCancelled.Blocking())
	assert.False(t, AppointmentStatusRefused.Blocking())
}
