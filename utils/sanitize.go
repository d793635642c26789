package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dailypost/dailypost/models"
)

var (
	sanitizer = bluemonday.UGCPolicy()
	stripper  = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// StripTags removes all markup.
func StripTags(input string) string {
	return strings.TrimSpace(stripper.Sanitize(input))
}

// SanitizeDraft strips markup from the plain-text fields and cleans the
// article body. The body keeps user-generated-content HTML.
func SanitizeDraft(d *models.Draft) {
	d.Title = StripTags(d.Title)
	d.Excerpt = StripTags(d.Excerpt)
	d.Author = StripTags(d.Author)
	d.Content = Sanitize(d.Content)
	d.Image = StripTags(d.Image)
}
