package trace

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// 컨텍스트에 저장되는 키 타입은 외부에서 직접 사용하지 못하게 unexported로 둔다.
type ctxKey string

const ctxKeyTrace ctxKey = "trace_info"

// Info는 하나의 HTTP 요청에 대한 트레이싱 정보를 담는다.
// spanSeq 는 같은 요청 안의 outbound 호출(AI provider 등)마다 1,2,3,... 증가한다.
type Info struct {
	RequestID string
	spanSeq   int64
}

// GenerateID는 트레이싱에 사용할 랜덤 ID를 생성한다.
func GenerateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WithRequest는 Request ID를 span 0 으로 컨텍스트에 저장한다.
func WithRequest(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyTrace, &Info{RequestID: requestID})
}

func infoFromContext(ctx context.Context) *Info {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(ctxKeyTrace).(*Info)
	return v
}

// RequestIDFromContext는 컨텍스트에서 Request ID를 조회한다.
func RequestIDFromContext(ctx context.Context) string {
	info := infoFromContext(ctx)
	if info == nil {
		return ""
	}
	return info.RequestID
}

// CurrentSpanID는 현재 span 시퀀스 값을 증가시키지 않고 반환한다.
func CurrentSpanID(ctx context.Context) string {
	info := infoFromContext(ctx)
	if info == nil {
		return "0"
	}
	return strconv.FormatInt(max(atomic.LoadInt64(&info.spanSeq), 0), 10)
}

// NextSpanID는 spanSeq를 1 증가시키고 (requestID, spanID)를 반환한다.
func NextSpanID(ctx context.Context) (string, string) {
	info := infoFromContext(ctx)
	if info == nil {
		// 미들웨어 바깥에서 사용된 경우
		return GenerateID(), "1"
	}
	val := atomic.AddInt64(&info.spanSeq, 1)
	return info.RequestID, strconv.FormatInt(val, 10)
}
