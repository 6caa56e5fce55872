// Package safety holds the narrow, high-precision content screens that run
// before (and independent of) any AI review.
package safety

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	gibberishRunLength    = 19
	gibberishMaxCompact   = 35
	linkSpamMinOccurrence = 6
)

var (
	linkPattern = regexp.MustCompile(`(?i)https?://`)

	slurPattern       = regexp.MustCompile(`(?i)\b(nigger|niggers|faggot|faggots|kike|kikes)\b`)
	incitementPattern = regexp.MustCompile(`(?i)\b(kill (them|all)|shoot (them|up)|bomb (them|it)|lynch)\b`)
	extremistPattern  = regexp.MustCompile(`(?i)\b(heil hitler|white power|sieg heil)\b`)
	exploitPattern    = regexp.MustCompile(`(?i)\b(child porn|child pornography|csam)\b`)

	hardRejectPatterns = []*regexp.Regexp{
		slurPattern,
		incitementPattern,
		extremistPattern,
		exploitPattern,
	}
)

// IsHardReject reports whether text is definitely unpublishable. It never
// approves anything; a false result only means "not obviously bad".
func IsHardReject(text string) bool {
	for _, p := range hardRejectPatterns {
		if p.MatchString(text) {
			return true
		}
	}

	if LongestRun(strings.ToLower(text)) >= gibberishRunLength && compactLength(text) < gibberishMaxCompact {
		return true
	}

	return CountLinks(text) >= linkSpamMinOccurrence
}

// CountLinks counts http:// and https:// occurrences.
func CountLinks(text string) int {
	return len(linkPattern.FindAllStringIndex(text, -1))
}

// LongestRun returns the length of the longest run of one repeated character.
// Line terminators break a run and are never counted as part of one.
func LongestRun(text string) int {
	longest, current := 0, 0
	var prev rune = -1
	for _, r := range text {
		if isLineTerminator(r) {
			current, prev = 0, -1
			continue
		}
		if r == prev {
			current++
		} else {
			current, prev = 1, r
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

func compactLength(text string) int {
	return utf8.RuneCountInString(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text))
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}
