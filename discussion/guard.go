// Package discussion screens discussion posts: hard length and quota limits
// before insert, advisory spam flags that never block.
package discussion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"youth-press/quota"
	"youth-press/safety"
)

const (
	ReasonTooManyWords    = "too_many_words"
	ReasonTooShort        = "too_short"
	ReasonDailyLimit      = "daily_limit_reached"
	ReasonTooManyLinks    = "too_many_links"
	ReasonRepeatedChars   = "repeated_characters"
	ReasonBlacklistPhrase = "blacklist_phrase"
)

const (
	maxLinks       = 2
	maxRepeatedRun = 13
	quotaKeyPrefix = "discussion_posts:"
)

var blacklistPhrases = []string{"buy now", "click here", "free money", "subscribe now"}

var (
	ErrValidation  = errors.New("post is not valid")
	ErrRateLimited = errors.New("daily post limit reached, try again tomorrow")
)

type Limits struct {
	MaxWords int
	MinChars int
}

// Verdict is the outcome of CanPost. Reasons block the post; SpamReasons
// only mark it for moderator review.
type Verdict struct {
	Allowed     bool
	Reasons     []string
	SpamReasons []string
}

func (v Verdict) Flagged() bool { return len(v.SpamReasons) > 0 }

// Err converts a blocking verdict into the error callers should surface.
func (v Verdict) Err() error {
	if v.Allowed {
		return nil
	}
	for _, r := range v.Reasons {
		if r == ReasonDailyLimit {
			return ErrRateLimited
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(v.Reasons, ", "))
}

type Guard struct {
	limiter *quota.DailyLimiter
	limits  Limits
}

func NewGuard(limiter *quota.DailyLimiter, limits Limits) *Guard {
	return &Guard{limiter: limiter, limits: limits}
}

func (g *Guard) Limits() Limits { return g.limits }

// CanPost runs the pre-insert checks for authorID. An error means the quota
// store could not be read.
func (g *Guard) CanPost(ctx context.Context, authorID, content string) (Verdict, error) {
	trimmed := strings.TrimSpace(content)

	var reasons []string
	if WordCount(trimmed) > g.limits.MaxWords {
		reasons = append(reasons, ReasonTooManyWords)
	}
	if utf8.RuneCountInString(trimmed) < g.limits.MinChars {
		reasons = append(reasons, ReasonTooShort)
	}
	if len(reasons) > 0 {
		return Verdict{Reasons: reasons}, nil
	}

	ok, err := g.limiter.Allow(ctx, quotaKeyPrefix+authorID)
	if err != nil {
		return Verdict{}, fmt.Errorf("read post quota: %w", err)
	}
	if !ok {
		return Verdict{Reasons: []string{ReasonDailyLimit}}, nil
	}

	return Verdict{Allowed: true, SpamReasons: SpamReasons(trimmed, g.limits.MinChars)}, nil
}

// Reserve takes one of today's post slots for authorID.
func (g *Guard) Reserve(ctx context.Context, authorID string) error {
	err := g.limiter.Reserve(ctx, quotaKeyPrefix+authorID)
	if errors.Is(err, quota.ErrLimitExceeded) {
		return ErrRateLimited
	}
	return err
}

// WordCount counts whitespace separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// SpamReasons returns every advisory spam signal in content.
func SpamReasons(content string, minChars int) []string {
	trimmed := strings.TrimSpace(content)
	lower := strings.ToLower(trimmed)

	var reasons []string
	if utf8.RuneCountInString(trimmed) < minChars {
		reasons = append(reasons, ReasonTooShort)
	}
	if safety.CountLinks(trimmed) > maxLinks {
		reasons = append(reasons, ReasonTooManyLinks)
	}
	if safety.LongestRun(trimmed) >= maxRepeatedRun {
		reasons = append(reasons, ReasonRepeatedChars)
	}
	for _, phrase := range blacklistPhrases {
		if strings.Contains(lower, phrase) {
			reasons = append(reasons, ReasonBlacklistPhrase)
			break
		}
	}
	return reasons
}
