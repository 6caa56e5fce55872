package review

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"youth-press/safety"
)

const minReviewableChars = 200

const (
	feedbackViolent    = "This submission contains clearly harmful violent language and cannot be published."
	feedbackHate       = "This submission contains hate speech and cannot be published."
	feedbackDisclosure = "Please add a clear disclosure describing your sourcing and how you know the reported information."
	feedbackTooShort   = "This draft is too short to evaluate. Expand it into a few solid paragraphs with a clear structure."
	feedbackApproved   = "The draft is coherent, readable, and suitable to publish."
)

var categoryMarkers = []struct {
	category Category
	pattern  *regexp.Regexp
}{
	{CategoryPerspective, regexp.MustCompile(`(?i)\b(opinion|i believe|i think|in my view|from my perspective)\b`)},
	{CategoryLetter, regexp.MustCompile(`(?i)(\bdear\s|\bsincerely\b|\bopen letter\b|\bto the editor\b)`)},
	{CategoryReporting, regexp.MustCompile(`(?i)\b(interview|reported|according to|sources?|witness|on the scene)\b`)},
	{CategoryExplainer, regexp.MustCompile(`(?i)\b(explainer|how it works|what this means|breakdown|analysis)\b`)},
}

// InferCategory classifies by keyword markers, first match wins, then falls
// back to the declared type and finally explainer.
func InferCategory(a Article) Category {
	text := a.Title + "\n" + a.Content
	for _, m := range categoryMarkers {
		if m.pattern.MatchString(text) {
			return m.category
		}
	}
	return NormalizeCategory(a.DeclaredType, "")
}

// ReviewLocally is the deterministic reviewer used when no AI result is
// available. It has no side effects and always returns a valid Result.
func ReviewLocally(a Article) Result {
	text := a.Title + "\n" + a.Content
	category := InferCategory(a)

	out := func(d Decision, feedback string) Result {
		return Result{Decision: d, Category: category, Feedback: feedback, Source: SourceFallback}
	}

	switch {
	case safety.ContainsViolentLanguage(text):
		return out(DecisionRejected, feedbackViolent)
	case safety.ContainsHateSpeech(text):
		return out(DecisionRejected, feedbackHate)
	case a.DeclaredType == string(CategoryReporting) && strings.TrimSpace(a.Disclosure) == "":
		return out(DecisionNeedsRevision, feedbackDisclosure)
	case utf8.RuneCountInString(collapseSpace(a.Content)) < minReviewableChars:
		return out(DecisionNeedsRevision, feedbackTooShort)
	}
	return out(DecisionApproved, feedbackApproved)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
