package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBus()

	var got []Event
	_, err := b.Subscribe(StageSwitched, func(ev Event) { got = append(got, ev) })
	require.NoError(t, err)

	require.NoError(t, b.Publish(New(StageSwitched, "engine", "payload")))
	require.Len(t, got, 1)
	assert.Equal(t, StageSwitched, got[0].Type)
	assert.Equal(t, "engine", got[0].Source)
	assert.Equal(t, "payload", got[0].Data)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestTypeIsolation(t *testing.T) {
	b := NewBus()

	started, stopped := 0, 0
	_, _ = b.Subscribe(EngineStarted, func(Event) { started++ })
	_, _ = b.Subscribe(EngineStopped, func(Event) { stopped++ })

	require.NoError(t, b.Publish(New(EngineStarted, "engine", nil)))
	assert.Equal(t, 1, started)
	assert.Equal(t, 0, stopped)
}

func TestCancelStopsDelivery(t *testing.T) {
	b := NewBus()

	calls := 0
	sub, err := b.Subscribe(EngineStarted, func(Event) { calls++ })
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())

	require.NoError(t, b.Publish(New(EngineStarted, "engine", nil)))
	sub.Cancel()
	require.NoError(t, b.Publish(New(EngineStarted, "engine", nil)))
	assert.Equal(t, 1, calls)

	sub.Cancel() // no-op
}

func TestClosedBusRejectsEverything(t *testing.T) {
	b := NewBus()
	_, err := b.Subscribe(EngineStarted, func(Event) {})
	require.NoError(t, err)

	b.Close()

	assert.ErrorIs(t, b.Publish(New(EngineStarted, "engine", nil)), ErrBusClosed)
	_, err = b.Subscribe(EngineStopped, func(Event) {})
	assert.ErrorIs(t, err, ErrBusClosed)

	b.Close() // no-op
}

func TestMultipleHandlersPerType(t *testing.T) {
	b := NewBus()

	calls := 0
	for i := 0; i < 3; i++ {
		_, err := b.Subscribe(EngineStarted, func(Event) { calls++ })
		require.NoError(t, err)
	}

	require.NoError(t, b.Publish(New(EngineStarted, "engine", nil)))
	assert.Equal(t, 3, calls)
}
