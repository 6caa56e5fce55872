package review

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const SystemPrompt = `You are an editorial reviewer for a youth journalism platform.

You must do all 3 tasks:
1) Decide moderation outcome.
2) Classify article category.
3) Give short constructive feedback.

Categories:
- reporting: original reporting, sourcing, interviews, observed events
- explainer: analysis, context, breakdown of events/concepts
- perspective: opinion/editorial/argument from the writer's point of view
- letter: short personal note, open letter, or direct message style writing

Moderation outcome:
- approved: publishable now
- needs_revision: real attempt but needs work
- rejected: only for clear safety violations or obvious abuse

Important policy:
- Be strict but fair.
- Prefer "needs_revision" over "rejected" for normal quality problems.
- Use "rejected" ONLY for: hate speech, threats/incitement, explicit sexual content involving minors, violent extremism, or blatant spam/gibberish abuse.
- Do NOT reject simply for being imperfect, underdeveloped, or missing structure.

Return ONLY valid JSON:
{
  "decision": "approved" | "needs_revision" | "rejected",
  "category": "reporting" | "explainer" | "perspective" | "letter",
  "feedback": "2-4 sentences that clearly explain why and how to improve if needed"
}`

// UserMessage renders the per-article payload sent with SystemPrompt.
func UserMessage(a Article) string {
	disclosure := strings.TrimSpace(a.Disclosure)
	if disclosure == "" {
		disclosure = "(none)"
	}
	return fmt.Sprintf("Review this article.\n\nTitle: %s\nSubmittedType: %s\nDisclosure: %s\n\nContent:\n%s",
		a.Title, a.DeclaredType, disclosure, a.Content)
}

var codeFence = regexp.MustCompile("(?i)```json|```")

// ParseModelResponse extracts the outermost JSON object from a model reply
// and normalizes it. Unparseable replies are errors so the caller falls back.
func ParseModelResponse(raw, declaredType string) (Result, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))
	candidate := cleaned
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		candidate = cleaned[start : end+1]
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	decision, _ := parsed["decision"].(string)
	category, _ := parsed["category"].(string)
	feedback, _ := parsed["feedback"].(string)
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		feedback = DefaultFeedback
	}

	return Result{
		Decision: NormalizeDecision(decision),
		Category: NormalizeCategory(category, declaredType),
		Feedback: feedback,
		Raw:      raw,
		Source:   SourceAI,
	}, nil
}
