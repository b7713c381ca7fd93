package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/gas-utility-service/internal/config"
	"github.com/spec-kit/gas-utility-service/internal/domain"
	"github.com/spec-kit/gas-utility-service/internal/events"
)

func newObservedNotifier(t *testing.T, cfg config.NotificationConfig) (events.Dispatcher, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), cfg).RegisterHandlers()
	return dispatcher, logs
}

func TestNotificationServiceResolvedRequest(t *testing.T) {
	dispatcher, logs := newObservedNotifier(t, config.NotificationConfig{
		EmailFrom:  "noreply@gas.example",
		WebhookURL: "https://hooks.gas.example/requests",
	})

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventRequestStatusChanged,
		SubjectID: 42,
		Payload: events.RequestStatusChangedPayload{
			OldStatus: domain.RequestStatusInProgress,
			NewStatus: domain.RequestStatusCompleted,
			Resolved:  true,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("RequestStatusChanged").Len())
	assert.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestNotificationServiceSkipsUnconfiguredChannels(t *testing.T) {
	dispatcher, logs := newObservedNotifier(t, config.NotificationConfig{})

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventRequestSubmitted,
		SubjectID: 7,
		Payload:   events.RequestSubmittedPayload{CustomerID: 3, TypeOfRequest: "Gas Leak"},
	}))

	assert.Equal(t, 1, logs.FilterMessage("RequestSubmitted").Len())
	assert.Zero(t, logs.FilterMessage("sendEmailNotificationStub").Len())
	assert.Zero(t, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestNotificationServiceNoEmailUntilResolved(t *testing.T) {
	dispatcher, logs := newObservedNotifier(t, config.NotificationConfig{EmailFrom: "noreply@gas.example"})

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventRequestStatusChanged,
		Payload: events.RequestStatusChangedPayload{
			OldStatus: domain.RequestStatusPending,
			NewStatus: domain.RequestStatusInProgress,
		},
	}))

	assert.Zero(t, logs.FilterMessage("sendEmailNotificationStub").Len())
}
