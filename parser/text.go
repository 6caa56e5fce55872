package parser

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	tagOpen      = regexp.MustCompile(`<`)
	likelyHTML   = regexp.MustCompile(`(?i)<[a-z][\s\S]*>`)
)

// StripHTMLToText 는 태그를 제거하고 엔티티를 풀어 공백을 한 칸으로 정리한 plain text 를 반환한다.
// 태그 경계는 공백으로 취급한다. (<p>a</p><p>b</p> -> "a b")
func StripHTMLToText(s string) string {
	if s == "" {
		return ""
	}
	spaced := tagOpen.ReplaceAllString(s, " <")
	text := html.UnescapeString(strictPolicy.Sanitize(spaced))
	return strings.Join(strings.Fields(text), " ")
}

// HasVisibleText 는 태그를 제거한 뒤에도 보이는 글자가 남아 있는지 확인한다.
func HasVisibleText(s string) bool {
	return StripHTMLToText(s) != ""
}

// IsLikelyHTML 은 입력이 마크업으로 보이는지 대략적으로 판단한다.
func IsLikelyHTML(s string) bool {
	return likelyHTML.MatchString(s)
}
