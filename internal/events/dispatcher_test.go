package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []EventType
	d.Subscribe(EventRequestSubmitted, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})
	d.Subscribe(EventRequestStatusChanged, func(_ context.Context, e Event) error {
		t.Fatalf("unexpected delivery of %s", e.Type)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventRequestSubmitted, SubjectID: 7}))
	assert.Equal(t, []EventType{EventRequestSubmitted}, got)
}

func TestDispatcherRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	calls := 0
	d.Subscribe(EventAccountRegistered, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventAccountRegistered, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventAccountRegistered})
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, boom)
}

func TestDispatcherRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()

	delivered := false
	d.Subscribe(EventRequestStatusChanged, func(context.Context, Event) error {
		panic("notifier exploded")
	})
	d.Subscribe(EventRequestStatusChanged, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventRequestStatusChanged})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notifier exploded")
	assert.True(t, delivered)
}

func TestDispatcherWithoutSubscribers(t *testing.T) {
	assert.NoError(t, NewInMemoryDispatcher().Publish(context.Background(), Event{Type: EventRequestStatusChanged}))
}
