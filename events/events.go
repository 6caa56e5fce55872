package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	// 게시 후 비동기 안전 검사 요청
	PostSafetyCheckRequested EventType = "post.safety_check_requested"
	// 모더레이션 감사 로그 기록 요청
	ModerationLogRequested EventType = "moderation.log_requested"
)

const (
	SourceAPI       = "api"
	SourceModerator = "moderator"
	version         = "1"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

func newBase(t EventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Version:   version,
	}
}

// PostSafetyCheckRequestedEvent 게시된 토론 글의 사후 안전 검사 요청
type PostSafetyCheckRequestedEvent struct {
	BaseEvent
	PostID  string `json:"post_id"`
	Content string `json:"content"`
}

func NewPostSafetyCheckRequested(source, postID, content string) PostSafetyCheckRequestedEvent {
	return PostSafetyCheckRequestedEvent{
		BaseEvent: newBase(PostSafetyCheckRequested, source),
		PostID:    postID,
		Content:   content,
	}
}

// ModerationLogRequestedEvent 감사 로그 한 건. ModeratorID 가 nil 이면 시스템 기록이다.
type ModerationLogRequestedEvent struct {
	BaseEvent
	TargetType  string  `json:"target_type"`
	TargetID    string  `json:"target_id"`
	Action      string  `json:"action"`
	Reason      string  `json:"reason"`
	ModeratorID *string `json:"moderator_id"`
}

func NewModerationLogRequested(source, targetType, targetID, action, reason string, moderatorID *string) ModerationLogRequestedEvent {
	return ModerationLogRequestedEvent{
		BaseEvent:   newBase(ModerationLogRequested, source),
		TargetType:  targetType,
		TargetID:    targetID,
		Action:      action,
		Reason:      reason,
		ModeratorID: moderatorID,
	}
}

// PeekType 페이로드에서 이벤트 타입만 먼저 읽는다 (BaseEvent.Type 는 top-level 에 있음)
func PeekType(payload []byte) (EventType, error) {
	var peek struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(payload, &peek); err != nil {
		return "", fmt.Errorf("failed to read event type: %w", err)
	}
	return peek.Type, nil
}
