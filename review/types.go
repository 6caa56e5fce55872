// Package review decides the editorial outcome for an article: an AI
// provider when one is configured, deterministic fallback rules otherwise,
// with a hard-reject screen and override policy on top of both.
package review

import (
	"errors"
	"slices"
	"strings"
)

type Decision string

const (
	DecisionApproved      Decision = "approved"
	DecisionNeedsRevision Decision = "needs_revision"
	DecisionRejected      Decision = "rejected"
)

var AllDecisions = []Decision{DecisionApproved, DecisionNeedsRevision, DecisionRejected}

type Category string

const (
	CategoryReporting   Category = "reporting"
	CategoryExplainer   Category = "explainer"
	CategoryPerspective Category = "perspective"
	CategoryLetter      Category = "letter"
)

var AllCategories = []Category{CategoryReporting, CategoryExplainer, CategoryPerspective, CategoryLetter}

// Source tells which branch produced a Result.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
	SourceError    Source = "error"
)

const (
	DefaultFeedback = "Thank you for your submission. Please revise and resubmit."
	OverrideNote    = "This draft shows potential but needs revision before publication. "
	// 로컬 규칙의 거절을 수정 요청으로 낮출 때 쓰는 문구
	FallbackRevisionFeedback = "Some wording in this draft may not be suitable for publication. Please review the language and revise before resubmitting."
	FallbackMarker           = " (reviewed by fallback rules)"
	FailureFeedback          = "Unable to complete automated review. Please revise for clarity and try again."
	HardRejectMessage        = "This submission violates our content policy and cannot be published."
	FallbackRawPrefix        = "FALLBACK:"
	ErrorRaw                 = "AI_ERROR"
)

var (
	ErrProviderNotConfigured = errors.New("ai provider is not configured")
	ErrProviderTimeout       = errors.New("ai provider timed out")
	ErrMalformedResponse     = errors.New("ai provider returned malformed response")
)

// Article is the reviewer's view of a submission. Content is plain text.
type Article struct {
	ID           string
	Title        string
	Content      string
	DeclaredType string
	Disclosure   string
}

type Result struct {
	Decision Decision `json:"decision"`
	Category Category `json:"category"`
	Feedback string   `json:"feedback"`
	Raw      string   `json:"-"`
	Source   Source   `json:"-"`
}

// NormalizeDecision maps any input onto a valid decision, needs_revision by default.
func NormalizeDecision(value string) Decision {
	d := Decision(value)
	if slices.Contains(AllDecisions, d) {
		return d
	}
	return DecisionNeedsRevision
}

// NormalizeCategory maps value onto a valid category, trying the declared type
// second and explainer last.
func NormalizeCategory(value, declared string) Category {
	if c, ok := ParseCategory(value); ok {
		return c
	}
	if c, ok := ParseCategory(declared); ok {
		return c
	}
	return CategoryExplainer
}

// ParseCategory accepts case and surrounding whitespace differences.
func ParseCategory(value string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(AllCategories, c) {
		return c, true
	}
	return "", false
}
