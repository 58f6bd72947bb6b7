package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFansOutToAllSubscribers(t *testing.T) {
	hub := NewHub()
	first := hub.Subscribe(1)
	second := hub.Subscribe(1)

	hub.Publish(BatchProcessed{BatchID: 7, Settled: true})

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, int64(7), (<-first).BatchID)
	assert.Equal(t, int64(7), (<-second).BatchID)
}

func TestHubNeverBlocksOnSlowSubscriber(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe(1)

	hub.Publish(BatchProcessed{BatchID: 1})
	hub.Publish(BatchProcessed{BatchID: 2}) // dropped, buffer is full

	require.Len(t, slow, 1)
	assert.Equal(t, int64(1), (<-slow).BatchID)
}

func TestHubWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() { hub.Publish(BatchProcessed{BatchID: 3}) })
}
