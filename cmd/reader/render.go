package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dailypost/dailypost/feed"
	"github.com/dailypost/dailypost/models"
	"github.com/dailypost/dailypost/utils"
)

const dateLayout = "January 2, 2006"

func (a *app) render(posts []models.Post) {
	s := a.state.State()
	v := feed.FromState(posts, s)

	fmt.Fprintf(a.out, "Daily Post | %s", feed.ChipFor(s.ActiveCategory).Name)
	if s.SearchQuery != "" {
		fmt.Fprintf(a.out, " | search %q", s.SearchQuery)
	}
	if s.AdminAuthenticated {
		fmt.Fprint(a.out, " | admin")
	}
	fmt.Fprintln(a.out)
	if s.Error != "" {
		fmt.Fprintf(a.out, "Error: %s\n", s.Error)
	}

	if v.Empty != feed.EmptyNone {
		fmt.Fprintf(a.out, "\n%s\n%s\n", v.Empty.Title(), v.Empty.Hint())
		return
	}

	fmt.Fprintln(a.out)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, p := range v.Posts {
		mark := " "
		if p.Featured {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s %d\t%s\t%s\t%s\t%s\n", mark, p.ID, p.Title, p.Category, p.Author, p.ReadTime)
	}
	_ = tw.Flush()

	fmt.Fprintf(a.out, "\nShowing %d of %d posts\n", len(v.Posts), v.Total)
	if v.HasMore {
		fmt.Fprintln(a.out, "Run `reader more` to load more.")
	}
}

func (a *app) renderPost(p models.Post) {
	fmt.Fprintf(a.out, "%s\n", p.Title)
	fmt.Fprintf(a.out, "%s | %s | %s | %s\n", p.Category, p.Author, p.Date.Local().Format(dateLayout), p.ReadTime)
	if p.HasImage() {
		fmt.Fprintf(a.out, "Image: %s\n", *p.Image)
	}
	fmt.Fprintf(a.out, "\n%s\n\n%s\n", utils.StripTags(p.Excerpt), utils.StripTags(p.Content))
}
