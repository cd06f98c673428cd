package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebookinghq/booking-api/internal/model"
	"github.com/ebookinghq/booking-api/internal/repository/memory"
	"github.com/ebookinghq/booking-api/internal/service/event"
	"github.com/ebookinghq/booking-api/pkg/logger"
	"github.com/ebookinghq/booking-api/pkg/metrics"
)

// promauto registers against the global registry, so the package shares one
// metrics instance across tests.
var testMetrics = metrics.NewMetrics("outbox_processor_test")

type fakeBroker struct {
	published []string
	fail      bool
}

func (b *fakeBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	if b.fail {
		return errors.New("broker unavailable")
	}
	b.published = append(b.published, channel)
	return nil
}

func (b *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

type fakeNotifier struct {
	sent []string
}

func (n *fakeNotifier) SendAppointmentEvent(eventType string, _ model.AppointmentEventPayload) error {
	n.sent = append(n.sent, eventType)
	return nil
}

func seedEvent(t *testing.T, outbox *memory.OutboxRepository) {
	t.Helper()
	recorder := event.NewService(outbox)
	apt := &model.Appointment{
		Date:      model.NewDate(2024, 1, 1),
		StartTime: model.TimeOfDay(600),
		Status:    model.AppointmentStatusPending,
	}
	require.NoError(t, recorder.RecordAppointmentEvent(context.Background(), model.EventAppointmentCreated, apt, "morel@example.com"))
}

func TestProcessEventsPublishesAndNotifies(t *testing.T) {
	outbox := memory.NewOutboxRepository()
	seedEvent(t, outbox)

	broker := &fakeBroker{}
	notifier := &fakeNotifier{}
	p := NewOutboxProcessor(outbox, broker, notifier, OutboxProcessorConfig{
		RetryDelay: time.Millisecond,
	}, logger.NewLogger(nil), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	assert.Equal(t, []string{model.EventAppointmentCreated}, broker.published)
	assert.Equal(t, []string{model.EventAppointmentCreated}, notifier.sent)

	pending, err := outbox.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "processed events leave the pending set")
}

func TestProcessEventsMarksFailed(t *testing.T) {
	outbox := memory.NewOutboxRepository()
	seedEvent(t, outbox)

	broker := &fakeBroker{fail: true}
	p := NewOutboxProcessor(outbox, broker, nil, OutboxProcessorConfig{
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, logger.NewLogger(nil), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	events := outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, string(model.OutboxStatusFailed), events[0].Status)
	require.NotNil(t, events[0].ErrorMessage)
	assert.Contains(t, *events[0].ErrorMessage, "broker unavailable")
}

func TestRetrySucceedsMidway(t *testing.T) {
	calls := 0
	err := retry(3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
