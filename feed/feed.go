// Package feed derives the visible page of posts from the store contents and
// the reader's filters.
package feed

import (
	"strings"

	"github.com/dailypost/dailypost/models"
	"github.com/dailypost/dailypost/state"
)

// Empty says why a view has no posts.
type Empty int

const (
	EmptyNone Empty = iota
	// EmptySearch means a search query matched nothing.
	EmptySearch
	// EmptyCategory means the category has no posts.
	EmptyCategory
)

// Title is the heading shown for an empty view.
func (e Empty) Title() string {
	switch e {
	case EmptySearch:
		return "No posts found"
	case EmptyCategory:
		return "No posts in this category"
	}
	return ""
}

// Hint is the suggestion shown under the heading.
func (e Empty) Hint() string {
	switch e {
	case EmptySearch:
		return "Try adjusting your search terms or browse different categories."
	case EmptyCategory:
		return "Try selecting a different category to see more posts."
	}
	return ""
}

// Query selects and pages posts. Page and PerPage below 1 are treated as 1
// and state.PostsPerPage.
type Query struct {
	Category string
	Search   string
	Page     int
	PerPage  int
}

// View is the derived page.
type View struct {
	Posts   []models.Post
	Total   int
	HasMore bool
	Empty   Empty
}

// Filter returns posts matching both the category and the search text, in
// their original order.
func Filter(posts []models.Post, category, search string) []models.Post {
	needle := strings.ToLower(search)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if !p.MatchesCategory(category) {
			continue
		}
		if needle != "" && !matchesSearch(p, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p models.Post, needle string) bool {
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Excerpt), needle) ||
		strings.Contains(strings.ToLower(p.Content), needle)
}

// Derive filters posts and keeps the first Page*PerPage of them.
func Derive(posts []models.Post, q Query) View {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = state.PostsPerPage
	}

	filtered := Filter(posts, q.Category, q.Search)
	visible := filtered
	// Compare pages before multiplying so huge page numbers cannot overflow
	if q.Page <= len(filtered)/q.PerPage {
		visible = filtered[:q.Page*q.PerPage]
	}

	v := View{
		Posts:   visible,
		Total:   len(filtered),
		HasMore: len(filtered) > len(visible),
	}
	if len(filtered) == 0 {
		if q.Search != "" {
			v.Empty = EmptySearch
		} else {
			v.Empty = EmptyCategory
		}
	}
	return v
}

// FromState derives the view for the reader's current filters.
func FromState(posts []models.Post, s state.State) View {
	return Derive(posts, Query{
		Category: s.ActiveCategory,
		Search:   s.SearchQuery,
		Page:     s.CurrentPage,
		PerPage:  s.PostsPerPage,
	})
}

// NextPage is the page "load more" dispatches after visible posts are shown.
func NextPage(visible, perPage int) int {
	if perPage < 1 {
		perPage = state.PostsPerPage
	}
	return visible/perPage + 1
}

// LoadMore returns the action that shows the next page of v.
func LoadMore(v View, perPage int) state.SetCurrentPage {
	return state.SetCurrentPage{Page: NextPage(len(v.Posts), perPage)}
}

// Chip is a category filter button.
type Chip struct {
	ID    string
	Name  string
	Color string
}

// Categories lists the filter chips, "all" first.
var Categories = []Chip{
	{ID: models.CategoryAll, Name: "All", Color: "#4285f4"},
	{ID: "sport", Name: "Sport", Color: "#ff9500"},
	{ID: "news", Name: "News", Color: "#34c759"},
	{ID: "politics", Name: "Politics", Color: "#007aff"},
}

// ChipFor returns the chip for a category filter, falling back to "all".
func ChipFor(category string) Chip {
	for _, c := range Categories {
		if strings.EqualFold(c.ID, category) {
			return c
		}
	}
	return Categories[0]
}
