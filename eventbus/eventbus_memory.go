package eventbus

import (
	"context"
	"strings"
	"sync"
	"time"

	"youth-press/config"
)

// MemoryEventBus delivers events inside one process. Failed events are
// retried on timers with the same schedule as the Kafka retry topics and
// end up in an in-memory dead letter list.
type MemoryEventBus struct {
	mu     sync.Mutex
	queues map[string]chan Event
	dead   map[string][]Event
	timers map[*time.Timer]struct{}
	closed bool

	// delay returns the wait before retry n (1-based).
	delay func(n int) time.Duration
}

const memoryQueueSize = 256

func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{
		queues: map[string]chan Event{},
		dead:   map[string][]Event{},
		timers: map[*time.Timer]struct{}{},
		delay:  func(n int) time.Duration { return RetryDelays[n-1] },
	}
}

func (m *MemoryEventBus) queue(topic string) chan Event {
	q, ok := m.queues[topic]
	if !ok {
		q = make(chan Event, memoryQueueSize)
		m.queues[topic] = q
	}
	return q
}

// Publish enqueues event on topic without blocking; a full queue drops the
// event with ErrQueueFull. DLQ topics are kept for inspection and retry
// topics are delivered back to their base topic after the delay.
func (m *MemoryEventBus) Publish(ctx context.Context, topic string, event Event) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrBusClosed
	}
	if strings.HasSuffix(topic, ".dlq") {
		base := strings.TrimSuffix(topic, ".dlq")
		m.dead[base] = append(m.dead[base], event)
		m.mu.Unlock()
		return nil
	}
	if idx := strings.LastIndex(topic, ".retry."); idx != -1 {
		base := topic[:idx]
		var t *time.Timer
		t = time.AfterFunc(m.delay(event.Retry), func() {
			m.mu.Lock()
			delete(m.timers, t)
			m.mu.Unlock()
			if err := m.Publish(context.Background(), base, event); err != nil && err != ErrBusClosed {
				config.ErrorWithFields("memory bus reinject failed", config.Fields{"event_id": event.ID, "error": err.Error()})
			}
		})
		m.timers[t] = struct{}{}
		m.mu.Unlock()
		return nil
	}
	q := m.queue(topic)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q <- event:
		return nil
	default:
		config.WarnWithFields("memory bus queue full, event dropped", config.Fields{"topic": topic, "event_id": event.ID})
		return ErrQueueFull
	}
}

// Subscribe runs handler for every event on topic until ctx ends. All
// subscribers of a topic share one queue, like a single consumer group.
func (m *MemoryEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	m.mu.Lock()
	q := m.queue(topic.Base())
	m.mu.Unlock()
	config.InfoWithFields("consumer started", config.Fields{"group_id": groupID, "topic": topic.Base(), "driver": DriverMemory})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-q:
			if err := handler(ctx, evt); err != nil {
				dest, next := routeFailure(topic, evt, err)
				if perr := m.Publish(ctx, dest, next); perr != nil {
					config.ErrorWithFields("failed to schedule retry", config.Fields{"event_id": evt.ID, "error": perr.Error()})
				}
			}
		}
	}
}

// StartRetryReinjector blocks until ctx ends; retries are timer driven.
func (m *MemoryEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	<-ctx.Done()
	return ctx.Err()
}

// PendingRetries returns how many retry timers have not fired yet.
func (m *MemoryEventBus) PendingRetries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// DeadLetters returns the events that exhausted their retries on topic.
func (m *MemoryEventBus) DeadLetters(topic Topic) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.dead[topic.Base()]...)
}

func (m *MemoryEventBus) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for t := range m.timers {
		t.Stop()
	}
	clear(m.timers)
}
