package discussion

import "strings"

// GuidingQuestion seeds a new discussion from the article title.
func GuidingQuestion(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "What stood out to you in this story?"
	}
	return `What stood out to you in "` + title + `"?`
}
