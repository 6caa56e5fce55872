package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHardReject(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want bool
	}{
		{"plain prose", "Our school garden grew twice as many tomatoes this year.", false},
		{"incitement", "We should KILL THEM all before the game.", true},
		{"shoot up", "someone said they would shoot up the place", true},
		{"extremist salute", "Heil Hitler was scrawled on the wall", true},
		{"exploitation", "links to child porn", true},
		{"bare violent verb is not enough", "The coach said we would kill it at the tournament.", false},
		{"skill is not kill", "Reading builds skill all year round.", false},
		{"short gibberish", "aaaaaaaaaaaaaaaaaaa", true},
		{"long run inside long text", strings.Repeat("z", 19) + " " + strings.Repeat("word ", 10), false},
		{"18 char run", strings.Repeat("a", 18), false},
		{"six links", strings.Repeat("see https://x.example ", 6), true},
		{"five links", strings.Repeat("see http://x.example ", 5), false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, IsHardReject(testCase.text))
		})
	}
}

func TestIsHardRejectBuyNowSpam(t *testing.T) {
	// title + body: short once whitespace is removed, with a 19-space run inside.
	text := "Ad\n" + strings.Repeat("buy now ", 5) + strings.Repeat(" ", 19)
	assert.True(t, IsHardReject(text))
}

func TestLongestRunIgnoresLineTerminators(t *testing.T) {
	assert.Equal(t, 3, LongestRun("aa\naaa"))
	assert.Equal(t, 0, LongestRun("\n\n\n\n"))
	assert.Equal(t, 0, LongestRun(""))
	assert.Equal(t, 4, LongestRun("ééééx"))
}

func TestCountLinks(t *testing.T) {
	assert.Equal(t, 0, CountLinks("no links here"))
	assert.Equal(t, 2, CountLinks("http://a.example and HTTPS://b.example"))
}

func TestCheckPost(t *testing.T) {
	testCases := []struct {
		content    string
		wantReason PostReason
		wantFlag   bool
	}{
		{"I disagree with the mayor about the bus routes.", "", false},
		{"I will bomb the exam tomorrow", ReasonViolentLanguage, true},
		{"Click here to win", ReasonSpamPhrase, true},
		{"skilled shooters were on the team", "", false},
	}

	for _, testCase := range testCases {
		reason, flagged := CheckPost(testCase.content)
		assert.Equal(t, testCase.wantFlag, flagged, testCase.content)
		assert.Equal(t, testCase.wantReason, reason, testCase.content)
	}
}
