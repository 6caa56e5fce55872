package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicNames(t *testing.T) {
	topic := NewTopic("yp.test")

	assert.Equal(t, "yp.test.dlq", topic.DLQ())
	retries := topic.GetRetryTopics()
	require.Len(t, retries, len(RetryDelays))
	assert.Equal(t, "yp.test.retry.5s", retries[0])

	name, err := topic.GetRetryTopic(2, 0)
	require.NoError(t, err)
	assert.Equal(t, "yp.test.retry.30s", name)

	_, err = topic.GetRetryTopic(2, 1)
	assert.ErrorIs(t, err, ErrMaxRetryExceeded)
	_, err = topic.GetRetryTopic(len(RetryDelays)+1, 0)
	assert.ErrorIs(t, err, ErrMaxRetryExceeded)
}

func TestParseRetryFromTopicNameRoundTrips(t *testing.T) {
	for i, name := range TopicModerationEvents.GetRetryTopics() {
		d, ok := ParseRetryFromTopicName(name)
		require.True(t, ok, name)
		assert.Equal(t, RetryDelays[i], d)
	}
	_, ok := ParseRetryFromTopicName("youth-press.moderation.events")
	assert.False(t, ok)
}

func TestTopicSpecs(t *testing.T) {
	specs := topicSpecs(TopicModerationEvents, 3)
	require.Len(t, specs, 2+len(RetryDelays))
	assert.Equal(t, 1, specs[1].NumPartitions)
	assert.Equal(t, 3, specs[2].NumPartitions)
}

type payload struct {
	Value string `json:"value"`
}

func newTestBus() *MemoryEventBus {
	bus := NewMemoryEventBus()
	bus.delay = func(int) time.Duration { return time.Millisecond }
	return bus
}

func TestMemoryEventBusDeliversJSON(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan payload, 1)
	go SubscribeJSON(ctx, bus, "g", TopicModerationEvents, func(_ context.Context, p payload, _ Event) error {
		got <- p
		return nil
	})

	evt, err := NewJSONEvent("", payload{Value: "hello"}, 0)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, TopicModerationEvents.Base(), evt))

	select {
	case p := <-got:
		assert.Equal(t, "hello", p.Value)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestMemoryEventBusRetriesThenSucceeds(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan Event, 1)
	go bus.Subscribe(ctx, "g", TopicModerationEvents, func(_ context.Context, evt Event) error {
		if calls.Add(1) < 3 {
			return errors.New("mongo unavailable")
		}
		done <- evt
		return nil
	})

	evt, err := NewJSONEvent("e1", payload{Value: "x"}, 0)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, TopicModerationEvents.Base(), evt))

	select {
	case final := <-done:
		assert.Equal(t, 2, final.Retry)
		assert.Equal(t, "mongo unavailable", final.LastError)
	case <-time.After(time.Second):
		t.Fatal("event not retried")
	}
	assert.Empty(t, bus.DeadLetters(TopicModerationEvents))
	assert.Zero(t, bus.PendingRetries(), "fired timers are released")
}

func TestMemoryEventBusDeadLetters(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go bus.Subscribe(ctx, "g", TopicModerationEvents, func(context.Context, Event) error {
		return errors.New("always fails")
	})

	evt, err := NewJSONEvent("e2", payload{}, 1)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, TopicModerationEvents.Base(), evt))

	require.Eventually(t, func() bool {
		return len(bus.DeadLetters(TopicModerationEvents)) == 1
	}, time.Second, 5*time.Millisecond)

	dead := bus.DeadLetters(TopicModerationEvents)[0]
	assert.Equal(t, "e2", dead.ID)
	assert.Equal(t, 1, dead.Retry)
}

func TestMemoryEventBusDropsWhenQueueFull(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()
	ctx := context.Background()

	for i := 0; i < memoryQueueSize; i++ {
		require.NoError(t, bus.Publish(ctx, "t", Event{}))
	}

	start := time.Now()
	assert.ErrorIs(t, bus.Publish(ctx, "t", Event{ID: "overflow"}), ErrQueueFull)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestMemoryEventBusRejectsAfterClose(t *testing.T) {
	bus := newTestBus()
	bus.Close()
	assert.ErrorIs(t, bus.Publish(context.Background(), "t", Event{}), ErrBusClosed)
}
