package discussion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youth-press/quota"
)

type countingStore struct {
	mu     sync.Mutex
	events map[string][]time.Time
	err    error
}

func (s *countingStore) Add(_ context.Context, key string, windowStart, at time.Time, limit int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.count(key, windowStart) >= limit {
		return false, nil
	}
	if s.events == nil {
		s.events = map[string][]time.Time{}
	}
	s.events[key] = append(s.events[key], at)
	return true, nil
}

func (s *countingStore) Count(_ context.Context, key string, windowStart time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	return s.count(key, windowStart), nil
}

func (s *countingStore) count(key string, windowStart time.Time) int64 {
	var n int64
	for _, at := range s.events[key] {
		if !at.Before(windowStart) {
			n++
		}
	}
	return n
}

func newGuard(store quota.CounterStore) *Guard {
	return NewGuard(quota.NewDailyLimiter(store, 2, time.Local), Limits{MaxWords: 300, MinChars: 30})
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestCanPostWordCeiling(t *testing.T) {
	g := newGuard(&countingStore{})

	v, err := g.CanPost(context.Background(), "u1", words(300))
	require.NoError(t, err)
	assert.True(t, v.Allowed)

	v, err = g.CanPost(context.Background(), "u1", words(301))
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, []string{ReasonTooManyWords}, v.Reasons)
	assert.ErrorIs(t, v.Err(), ErrValidation)
}

func TestCanPostMinimumLength(t *testing.T) {
	g := newGuard(&countingStore{})

	v, err := g.CanPost(context.Background(), "u1", "   "+strings.Repeat("a", 29)+"  ")
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, []string{ReasonTooShort}, v.Reasons)

	v, err = g.CanPost(context.Background(), "u1", "This response is thirty chars!")
	require.NoError(t, err)
	assert.True(t, v.Allowed)
}

// Scenario: 30-character second post of the day passes, the third is blocked.
func TestCanPostDailyQuota(t *testing.T) {
	ctx := context.Background()
	g := newGuard(&countingStore{})
	content := "This response is thirty chars!"
	require.Len(t, content, 30)

	require.NoError(t, g.Reserve(ctx, "u1"))

	v, err := g.CanPost(ctx, "u1", content)
	require.NoError(t, err)
	require.True(t, v.Allowed, "second post of the day")
	require.NoError(t, g.Reserve(ctx, "u1"))

	v, err = g.CanPost(ctx, "u1", content)
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, []string{ReasonDailyLimit}, v.Reasons)
	assert.ErrorIs(t, v.Err(), ErrRateLimited)

	assert.ErrorIs(t, g.Reserve(ctx, "u1"), ErrRateLimited)

	other, err := g.CanPost(ctx, "u2", content)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestCanPostStoreError(t *testing.T) {
	g := newGuard(&countingStore{err: errors.New("mongo down")})

	_, err := g.CanPost(context.Background(), "u1", words(20))
	assert.Error(t, err)
}

func TestSpamReasonsFlagButDoNotBlock(t *testing.T) {
	g := newGuard(&countingStore{})

	v, err := g.CanPost(context.Background(), "u1", "Great article!!! Click here: http://a.example http://b.example http://c.example")
	require.NoError(t, err)
	assert.True(t, v.Allowed)
	assert.True(t, v.Flagged())
	assert.Equal(t, []string{ReasonTooManyLinks, ReasonBlacklistPhrase}, v.SpamReasons)
}

func TestSpamReasons(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    []string
	}{
		{"clean", "I liked how the reporter talked to both teams.", nil},
		{"short", "nice", []string{ReasonTooShort}},
		{"two links are fine", "see http://a.example and https://b.example for more", nil},
		{"repeated characters", "so good" + strings.Repeat("!", 13) + " really enjoyed it", []string{ReasonRepeatedChars}},
		{"twelve repeats are fine", "so good" + strings.Repeat("!", 12) + " really enjoyed it", nil},
		{"subscribe now", "Subscribe NOW to my channel for more takes", []string{ReasonBlacklistPhrase}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, SpamReasons(testCase.content, 30))
		})
	}
}

func TestGuidingQuestion(t *testing.T) {
	assert.Equal(t, `What stood out to you in "Bus Routes"?`, GuidingQuestion(" Bus Routes "))
	assert.Equal(t, "What stood out to you in this story?", GuidingQuestion("  "))
}
