package safety

import "regexp"

// PostReason names the keyword list that caught a discussion post.
type PostReason string

const (
	ReasonViolentLanguage PostReason = "violent_language"
	ReasonHateSpeech      PostReason = "hate_speech"
	ReasonSpamPhrase      PostReason = "spam_phrase"
)

var (
	violentWordPattern = regexp.MustCompile(`(?i)\b(kill|shoot|bomb)\b`)
	spamPhrasePattern  = regexp.MustCompile(`(?i)\b(buy now|free money|click here)\b`)
)

var postRules = []struct {
	reason  PostReason
	pattern *regexp.Regexp
}{
	{ReasonViolentLanguage, violentWordPattern},
	{ReasonHateSpeech, slurPattern},
	{ReasonSpamPhrase, spamPhrasePattern},
}

// ContainsViolentLanguage matches bare violent verbs. Much broader than the
// incitement phrases IsHardReject looks for.
func ContainsViolentLanguage(text string) bool { return violentWordPattern.MatchString(text) }

func ContainsHateSpeech(text string) bool { return slurPattern.MatchString(text) }

// CheckPost runs the lightweight keyword screen used for discussion posts.
// It returns the first matching reason, if any.
func CheckPost(content string) (PostReason, bool) {
	for _, rule := range postRules {
		if rule.pattern.MatchString(content) {
			return rule.reason, true
		}
	}
	return "", false
}
