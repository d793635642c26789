package feed

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailypost/dailypost/models"
	"github.com/dailypost/dailypost/state"
)

func samplePosts(n int) []models.Post {
	cats := models.Categories
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, models.Post{
			ID:       int64(n - i),
			Title:    fmt.Sprintf("Post %d", n-i),
			Excerpt:  "excerpt",
			Content:  "content",
			Category: cats[i%len(cats)],
		})
	}
	return posts
}

func TestFilter_CategoryAndSearchCompose(t *testing.T) {
	t.Parallel()
	posts := []models.Post{
		{ID: 1, Title: "Cup final", Category: models.CategorySport},
		{ID: 2, Title: "Budget", Excerpt: "the CUP of tea tax", Category: models.CategoryPolitics},
		{ID: 3, Title: "Rain", Content: "world cup delayed", Category: models.CategoryNews},
		{ID: 4, Title: "Election", Category: models.CategoryPolitics},
	}

	tests := []struct {
		name     string
		category string
		search   string
		want     []int64
	}{
		{"all", "all", "", []int64{1, 2, 3, 4}},
		{"All wildcard", "All", "", []int64{1, 2, 3, 4}},
		{"category only", "politics", "", []int64{2, 4}},
		{"search only", "all", "cup", []int64{1, 2, 3}},
		{"both", "POLITICS", "Cup", []int64{2}},
		{"no match", "sport", "tax", []int64{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Filter(posts, tt.category, tt.search)
			ids := make([]int64, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestDerive_Pagination(t *testing.T) {
	t.Parallel()
	posts := samplePosts(14)

	v := Derive(posts, Query{Category: "all", Page: 1, PerPage: 6})
	assert.Len(t, v.Posts, 6)
	assert.Equal(t, 14, v.Total)
	assert.True(t, v.HasMore)
	assert.Equal(t, posts[:6], v.Posts)

	v = Derive(posts, Query{Category: "all", Page: 2, PerPage: 6})
	assert.Len(t, v.Posts, 12)
	assert.True(t, v.HasMore)

	v = Derive(posts, Query{Category: "all", Page: 3, PerPage: 6})
	assert.Len(t, v.Posts, 14)
	assert.False(t, v.HasMore)
}

func TestDerive_HasMoreMatchesPageBoundary(t *testing.T) {
	t.Parallel()
	for n := 0; n <= 13; n++ {
		for page := 1; page <= 3; page++ {
			v := Derive(samplePosts(n), Query{Page: page, PerPage: 6})
			assert.Equal(t, n > page*6, v.HasMore, "n=%d page=%d", n, page)
		}
	}
}

func TestDerive_HugePageShowsEverything(t *testing.T) {
	t.Parallel()
	posts := samplePosts(10)
	for _, page := range []int{math.MaxInt / 3, math.MaxInt / 6, math.MaxInt} {
		v := Derive(posts, Query{Page: page, PerPage: 6})
		assert.Len(t, v.Posts, 10, "page=%d", page)
		assert.False(t, v.HasMore)
	}
}

func TestDerive_EmptyStates(t *testing.T) {
	t.Parallel()
	posts := samplePosts(3)

	v := Derive(posts, Query{Category: "all", Search: "zzz"})
	assert.Equal(t, EmptySearch, v.Empty)
	assert.Equal(t, "Try adjusting your search terms or browse different categories.", v.Empty.Hint())

	v = Derive(posts[:1], Query{Category: "politics"})
	assert.Equal(t, EmptyCategory, v.Empty)
	assert.Equal(t, "Try selecting a different category to see more posts.", v.Empty.Hint())

	v = Derive(posts, Query{})
	assert.Equal(t, EmptyNone, v.Empty)
	assert.Empty(t, v.Empty.Hint())
}

func TestNextPage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2, NextPage(6, 6))
	assert.Equal(t, 3, NextPage(12, 6))
	assert.Equal(t, 1, NextPage(4, 6))
	assert.Equal(t, 2, NextPage(6, 0))
}

func TestFromState_LoadMore(t *testing.T) {
	t.Parallel()
	posts := samplePosts(9)
	c := state.NewContainer()

	v := FromState(posts, c.State())
	require.Len(t, v.Posts, 6)
	require.True(t, v.HasMore)

	c.Dispatch(LoadMore(v, c.State().PostsPerPage))
	v = FromState(posts, c.State())
	assert.Len(t, v.Posts, 9)
	assert.False(t, v.HasMore)

	c.Dispatch(state.SetSearchQuery{Query: "Post 9"})
	assert.Equal(t, 1, c.State().CurrentPage)
	v = FromState(posts, c.State())
	require.Len(t, v.Posts, 1)
	assert.Equal(t, int64(9), v.Posts[0].ID)
}

func TestChipFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "#ff9500", ChipFor("SPORT").Color)
	assert.Equal(t, "#4285f4", ChipFor("weather").Color)
}
