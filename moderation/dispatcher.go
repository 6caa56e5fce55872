// Package moderation carries the best-effort side effects of discussion
// posting and moderator actions over the event bus.
package moderation

import (
	"context"
	"fmt"

	"youth-press/config"
	"youth-press/eventbus"
	"youth-press/events"
)

// EventDispatcher 모더레이션 이벤트 발행 서비스
type EventDispatcher struct {
	bus    eventbus.EventBus
	source string
}

func NewEventDispatcher(bus eventbus.EventBus, source string) *EventDispatcher {
	return &EventDispatcher{bus: bus, source: source}
}

func (d *EventDispatcher) publish(ctx context.Context, id string, payload any) error {
	evt, err := eventbus.NewJSONEvent(id, payload, 0)
	if err != nil {
		return fmt.Errorf("failed to build event: %w", err)
	}
	return d.bus.Publish(ctx, eventbus.TopicModerationEvents.Base(), evt)
}

// RequestPostSafetyCheck 게시 후 안전 검사 요청. 실패는 기록만 하고 호출자를 막지 않는다.
func (d *EventDispatcher) RequestPostSafetyCheck(ctx context.Context, postID, content string) {
	e := events.NewPostSafetyCheckRequested(d.source, postID, content)
	if err := d.publish(ctx, e.ID, e); err != nil {
		config.ErrorWithFields("post safety check not scheduled", config.Fields{
			"post_id":  postID,
			"event_id": e.ID,
			"error":    err.Error(),
		})
	}
}

// AppendLog 감사 로그 기록 요청. 발행에 실패하면 유실된 항목 자체를 로그에 남긴다.
func (d *EventDispatcher) AppendLog(ctx context.Context, targetType, targetID, action, reason string, moderatorID *string) {
	e := events.NewModerationLogRequested(d.source, targetType, targetID, action, reason, moderatorID)
	if err := d.publish(ctx, e.ID, e); err != nil {
		fields := config.Fields{
			"event_id":    e.ID,
			"target_type": targetType,
			"target_id":   targetID,
			"action":      action,
			"reason":      reason,
			"error":       err.Error(),
		}
		if moderatorID != nil {
			fields["moderator_id"] = *moderatorID
		}
		config.ErrorWithFields("moderation log entry not recorded", fields)
	}
}
