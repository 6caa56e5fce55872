package parser_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"youth-press/parser"
)

func TestStripHTMLToText(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text is kept", "  Hello   world \n", "Hello world"},
		{"block tags become spaces", "<p>First</p><p>Second</p>", "First Second"},
		{"entities are decoded", "Tom&nbsp;&amp;&nbsp;Jerry", "Tom & Jerry"},
		{"script content is dropped", "<script>alert(1)</script><p>Body</p>", "Body"},
		{"only markup", "<p><br/></p>", ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, parser.StripHTMLToText(testCase.in))
		})
	}
}

func TestHasVisibleText(t *testing.T) {
	assert.False(t, parser.HasVisibleText("<p>   </p>"))
	assert.True(t, parser.HasVisibleText("<p>x</p>"))
}

func TestIsLikelyHTML(t *testing.T) {
	assert.True(t, parser.IsLikelyHTML("<p>hi</p>"))
	assert.False(t, parser.IsLikelyHTML("3 < 4 and 5 > 2"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "school-board-votes-on-lunch", parser.Slugify("  School Board Votes on Lunch!! "))
	assert.Equal(t, "article", parser.Slugify("¿¡!"))
	assert.Equal(t, "a-b", parser.Slugify("--a__b--"))
}

func TestNewSlugAddsRandomSuffix(t *testing.T) {
	slug := parser.NewSlug("Climate Walkout")
	assert.Regexp(t, regexp.MustCompile(`^climate-walkout-[0-9a-f]{8}$`), slug)
	assert.NotEqual(t, slug, parser.NewSlug("Climate Walkout"))
}
