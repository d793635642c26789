package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Category is the closed set of post sections.
type Category string

const (
	CategoryNews     Category = "NEWS"
	CategorySport    Category = "SPORT"
	CategoryPolitics Category = "POLITICS"
)

// CategoryAll is the filter value matching every category.
const CategoryAll = "all"

// DefaultAuthor is used when a draft leaves the author blank.
const DefaultAuthor = "Admin"

// WordsPerMinute drives the read time estimate.
const WordsPerMinute = 200

// Categories lists every valid category in display order.
var Categories = []Category{CategoryNews, CategorySport, CategoryPolitics}

// ParseCategory maps any casing of a category name onto its canonical value.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryNews:
		return CategoryNews, true
	case CategorySport:
		return CategorySport, true
	case CategoryPolitics:
		return CategoryPolitics, true
	}
	return "", false
}

// IsWildcardCategory reports whether filter selects every category ("all" or "All").
func IsWildcardCategory(filter string) bool {
	return filter == "" || strings.EqualFold(filter, CategoryAll)
}

// MatchesCategory reports whether the post falls under the given filter.
func (p Post) MatchesCategory(filter string) bool {
	if IsWildcardCategory(filter) {
		return true
	}
	return strings.EqualFold(string(p.Category), filter)
}

// Post is a single published article as persisted under the posts key.
type Post struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Excerpt  string    `json:"excerpt"`
	Content  string    `json:"content"`
	Category Category  `json:"category"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	ReadTime string    `json:"readTime"`
	Image    *string   `json:"image"`
	Featured bool      `json:"featured"`
}

// HasImage reports whether the post carries a non-empty image reference.
func (p Post) HasImage() bool {
	return p.Image != nil && *p.Image != ""
}

// Draft is the admin form submission a post is created from.
type Draft struct {
	Title    string   `json:"title" schema:"title" validate:"required"`
	Excerpt  string   `json:"excerpt" schema:"excerpt" validate:"required"`
	Content  string   `json:"content" schema:"content" validate:"required"`
	Category Category `json:"category" schema:"category" validate:"required,oneof=NEWS SPORT POLITICS"`
	Author   string   `json:"author" schema:"author"`
	Image    string   `json:"image" schema:"image"`
	Featured bool     `json:"featured" schema:"featured"`
}

// ReadTime returns the "N min read" label for content. Words are counted by
// splitting on single spaces, markup included.
func ReadTime(content string) string {
	words := len(strings.Split(content, " "))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	return fmt.Sprintf("%d min read", minutes)
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
