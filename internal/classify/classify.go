// Package classify derives a default content category from keyword text.
// Rules are checked in order; the first match wins.
package classify

import (
	"regexp"
	"strings"

	"draftflow/internal/models"
)

type rule struct {
	pattern     *regexp.Regexp
	contentType string
}

var rules = []rule{
	{regexp.MustCompile(`how to|guide`), models.ContentTypeHowTo},
	{regexp.MustCompile(`\bvs\b|\bversus\b|compared`), models.ContentTypeComparison},
	{regexp.MustCompile(`\bbest\b|\btop\b|\d+\s+(ways|tips|ideas|reasons)`), models.ContentTypeListicle},
	{regexp.MustCompile(`review`), models.ContentTypeReview},
	{regexp.MustCompile(`case study|success story`), models.ContentTypeCaseStudy},
	{regexp.MustCompile(`\bnews\b|update|announcement`), models.ContentTypeNews},
	{regexp.MustCompile(`complete guide|ultimate|everything`), models.ContentTypePillar},
}

var defaultWordCounts = map[string]int{
	models.ContentTypeHowTo:      1500,
	models.ContentTypeComparison: 1800,
	models.ContentTypeListicle:   1200,
	models.ContentTypeReview:     1300,
	models.ContentTypeCaseStudy:  2000,
	models.ContentTypeNews:       800,
	models.ContentTypePillar:     3000,
	models.ContentTypeBlogPost:   1000,
}

// ContentType classifies keyword text, falling back to a plain blog post.
func ContentType(keyword string) string {
	text := strings.ToLower(keyword)
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.contentType
		}
	}
	return models.ContentTypeBlogPost
}

// DefaultWordCount returns the target word count for a content type.
func DefaultWordCount(contentType string) int {
	if wc, ok := defaultWordCounts[contentType]; ok {
		return wc
	}
	return defaultWordCounts[models.ContentTypeBlogPost]
}
