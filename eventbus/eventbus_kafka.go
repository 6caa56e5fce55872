package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"youth-press/config"
)

// KafkaEventBus는 confluent-kafka-go 라이브러리를 사용한 EventBus 구현체입니다.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
}

// NewKafkaEventBus는 Kafka Producer를 초기화합니다.
func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka Producer 생성 실패: %w", err)
	}

	// 전달 보고서 중 요청과 무관하게 실패한 것만 기록
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					config.ErrorWithFields("kafka delivery failed", config.Fields{
						"topic": topicName(ev),
						"error": ev.TopicPartition.Error.Error(),
					})
				}
			case kafka.Error:
				config.ErrorWithFields("kafka error", config.Fields{"error": ev.Error()})
			}
		}
	}()

	return &KafkaEventBus{
		Producer: p,
		Brokers:  brokers,
	}, nil
}

// Close는 Producer를 안전하게 종료합니다.
func (k *KafkaEventBus) Close() {
	if k.Producer == nil {
		return
	}
	if remaining := k.Producer.Flush(5000); remaining > 0 {
		config.Logger.Warnf("%d messages still queued after flush", remaining)
	}
	k.Producer.Close()
	config.Logger.Info("kafka producer closed")
}

// Publish는 지정된 토픽에 이벤트를 발행하고 전달 보고서를 기다립니다.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("이벤트 마샬링 실패: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("메시지 발행 실패: %w", err)
	}

	select {
	case ev := <-deliveryChan:
		if m, ok := ev.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("메시지 전달 실패: %w", m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (k *KafkaEventBus) newConsumer(groupID string) (*kafka.Consumer, error) {
	return kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false, // 재시도 로직을 위해 수동 커밋 사용
		"partition.assignment.strategy": "range",
	})
}

// Subscribe는 기본 토픽을 구독하고 handler 를 실행합니다. 실패한 이벤트는
// 재시도 토픽이나 DLQ 로 옮긴 뒤에만 커밋합니다.
func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("kafka Consumer 생성 실패: %w", err)
	}
	defer c.Close()

	if err := c.SubscribeTopics([]string{topic.Base()}, nil); err != nil {
		return fmt.Errorf("토픽 구독 실패 %s: %w", topic.Base(), err)
	}
	config.InfoWithFields("consumer started", config.Fields{"group_id": groupID, "topic": topic.Base()})

	for {
		select {
		case <-ctx.Done():
			config.Logger.Info("consumer stopping")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			// 타임아웃은 정상적인 상황이고, 그 외 오류는 librdkafka 가 복구한다
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			config.ErrorWithFields("undecodable event skipped", config.Fields{"topic": topicName(msg), "error": err.Error()})
			c.CommitMessage(msg)
			continue
		}

		if err := handler(ctx, evt); err != nil {
			dest, next := routeFailure(topic, evt, err)
			if perr := k.Publish(ctx, dest, next); perr != nil {
				config.ErrorWithFields("failed to schedule retry, offset not committed", config.Fields{
					"event_id": evt.ID,
					"topic":    dest,
					"error":    perr.Error(),
				})
				continue
			}
		}

		if _, err := c.CommitMessage(msg); err != nil {
			config.ErrorWithFields("offset commit failed", config.Fields{"topic": topicName(msg), "error": err.Error()})
		}
	}
}

// StartRetryReinjector는 모든 재시도 토픽을 구독하고 지연 시간이 지난
// 메시지를 기본 토픽으로 재발행합니다.
func (k *KafkaEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("kafka 재시도 재주입기 생성 실패: %w", err)
	}
	defer c.Close()

	retryTopics := topic.GetRetryTopics()
	if err := c.SubscribeTopics(retryTopics, nil); err != nil {
		return fmt.Errorf("재시도 토픽 구독 실패 %v: %w", retryTopics, err)
	}
	config.InfoWithFields("retry reinjector started", config.Fields{
		"group_id": groupID,
		"topics":   strings.Join(retryTopics, ","),
	})

	for {
		select {
		case <-ctx.Done():
			config.Logger.Info("retry reinjector stopping")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok {
				if kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				if kerr.IsFatal() {
					return fmt.Errorf("재시도 재주입 컨슈머 치명적 오류: %w", err)
				}
			}
			config.Logger.Errorf("retry reinjector read error: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		name := topicName(msg)
		delay, ok := ParseRetryFromTopicName(name)
		if !ok {
			config.ErrorWithFields("unparseable retry topic skipped", config.Fields{"topic": name})
			c.CommitMessage(msg)
			continue
		}

		if wait := time.Until(msg.Timestamp.Add(delay)); wait > 0 {
			// 컨슈머 전체를 막지 않도록 짧게만 대기하고, 커밋 없이 다시 읽는다
			time.Sleep(min(max(wait, 50*time.Millisecond), 500*time.Millisecond))
			if err := c.Seek(msg.TopicPartition, 0); err != nil {
				config.Logger.Errorf("seek failed on %s: %v", name, err)
			}
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			config.ErrorWithFields("undecodable retry event skipped", config.Fields{"topic": name, "error": err.Error()})
			c.CommitMessage(msg)
			continue
		}

		if err := k.Publish(ctx, topic.Base(), evt); err != nil {
			config.ErrorWithFields("reinject failed, offset not committed", config.Fields{"event_id": evt.ID, "error": err.Error()})
			continue
		}
		config.InfoWithFields("event reinjected", config.Fields{"event_id": evt.ID, "from": name, "retry": evt.Retry})

		if _, err := c.CommitMessage(msg); err != nil {
			config.Logger.Errorf("commit after reinject failed: %v", err)
		}
	}
}

func topicName(m *kafka.Message) string {
	if m.TopicPartition.Topic == nil {
		return ""
	}
	return *m.TopicPartition.Topic
}
