package eventbus

// 전역 토픽 선언: 모더레이션 부수효과(사후 안전 검사, 감사 로그)를 한 토픽으로 전달한다.
var (
	TopicModerationEvents = NewTopic("youth-press.moderation.events")
)

var AllTopics = []Topic{
	TopicModerationEvents,
}
