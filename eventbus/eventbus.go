package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"youth-press/config"
)

// RetryDelays는 재시도 횟수(1-based)별로 사용할 고정된 지연 시간 목록입니다.
// 모더레이션 로그는 감사 기록이라 유실보다 지연이 낫기 때문에 마지막 단계가 길다.
var RetryDelays = []time.Duration{
	5 * time.Second,
	30 * time.Second,
	2 * time.Minute,
	10 * time.Minute,
	30 * time.Minute,
}

// Topic은 토픽의 기본 이름, 재시도 토픽, DLQ 토픽 이름을 관리합니다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ는 DLQ 토픽 이름을 반환합니다 (예: my_topic.dlq).
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// GetRetryTopics는 모든 재시도 토픽의 이름을 반환합니다.
func (t Topic) GetRetryTopics() []string {
	topics := make([]string, len(RetryDelays))
	for i, delay := range RetryDelays {
		// 토픽 이름 형식: base.retry.10s
		topics[i] = fmt.Sprintf("%s.retry.%s", t.base, delay.String())
	}
	return topics
}

// GetRetryTopic은 다음 재시도 횟수(1-based)에 해당하는 재시도 토픽 이름을 반환합니다.
// maxRetry 를 넘으면 ErrMaxRetryExceeded 를 반환합니다.
func (t Topic) GetRetryTopic(retryCount, maxRetry int) (string, error) {
	if maxRetry <= 0 || maxRetry > len(RetryDelays) {
		maxRetry = len(RetryDelays)
	}
	if retryCount <= 0 || retryCount > maxRetry {
		return "", ErrMaxRetryExceeded
	}
	delay := RetryDelays[retryCount-1]
	return fmt.Sprintf("%s.retry.%s", t.base, delay.String()), nil
}

// Event는 버스 메시지의 페이로드로 사용되는 구조체입니다.
type Event struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"` // 현재 재시도 횟수 (0부터 시작)
	MaxRetry  int             `json:"max_retry"`
	LastError string          `json:"last_error,omitempty"`
}

// EventHandler는 이벤트 처리 함수의 시그니처입니다.
type EventHandler func(ctx context.Context, event Event) error

// EventBus 인터페이스는 이벤트 발행 및 구독의 추상화를 정의합니다.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	// Subscribe는 기본 토픽을 구독하여 메인 로직을 실행합니다.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	// StartRetryReinjector는 모든 재시도 토픽을 구독하고 기본 토픽으로 이벤트를 재발행합니다.
	// 프로세스 내부 버스는 타이머로 재시도하므로 ctx 가 끝날 때까지 대기만 한다.
	StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error
	Close()
}

// ErrMaxRetryExceeded는 최대 재시도 횟수를 초과했을 때 반환되는 오류입니다.
var ErrMaxRetryExceeded = errors.New("최대 재시도 횟수 초과")

// ErrBusClosed는 Close 이후의 Publish 에 반환됩니다.
var ErrBusClosed = errors.New("event bus closed")

// ErrQueueFull는 메모리 큐가 가득 차서 이벤트를 버렸을 때 반환됩니다.
var ErrQueueFull = errors.New("event queue full")

// routeFailure decides where a failed event goes next: the retry topic for
// its next attempt, or the DLQ once its retries are used up.
func routeFailure(topic Topic, evt Event, handlerErr error) (string, Event) {
	evt.LastError = handlerErr.Error()
	next := evt.Retry + 1
	retryTopic, err := topic.GetRetryTopic(next, evt.MaxRetry)
	if err != nil {
		config.ErrorWithFields("event retries exhausted, sending to DLQ", config.Fields{
			"event_id": evt.ID,
			"topic":    topic.DLQ(),
			"error":    evt.LastError,
		})
		return topic.DLQ(), evt
	}
	evt.Retry = next
	config.WarnWithFields("event handling failed, retry scheduled", config.Fields{
		"event_id": evt.ID,
		"retry":    evt.Retry,
		"topic":    retryTopic,
		"error":    evt.LastError,
	})
	return retryTopic, evt
}
