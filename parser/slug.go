package parser

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 는 제목을 URL-safe 한 소문자 slug 로 바꾼다. 남는 글자가 없으면 "article".
func Slugify(title string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "article"
	}
	return s
}

// NewSlug 는 Slugify 결과에 UUID 앞 8자리를 붙여 충돌 가능성을 낮춘다.
func NewSlug(title string) string {
	return Slugify(title) + "-" + uuid.NewString()[:8]
}
