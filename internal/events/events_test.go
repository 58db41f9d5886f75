package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	h.Publish(TypeJobCreated, map[string]string{"source": "lever"})

	msg := <-ch
	var evt Event
	require.NoError(t, json.Unmarshal([]byte(msg), &evt))
	assert.Equal(t, TypeJobCreated, evt.Type)
	assert.False(t, evt.At.IsZero())
	assert.JSONEq(t, `{"source":"lever"}`, string(evt.Data))
}

func TestSlowSubscriberIsDroppedNotBlocked(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	// fill the buffer and then some; Publish must never block
	for i := 0; i < 50; i++ {
		h.Publish(TypeScrapeFinished, nil)
	}
	assert.Len(t, ch, cap(ch))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	// publishing after unsubscribe must not panic on the closed channel
	h.Publish(TypeJobsScored, nil)
}
