package main

import (
	"fmt"
	"strings"

	"github.com/dailypost/dailypost/auth"
	"github.com/dailypost/dailypost/feed"
	"github.com/dailypost/dailypost/models"
	"github.com/dailypost/dailypost/state"
)

type ListCmd struct{}

func (c *ListCmd) Run(a *app) error {
	a.render(a.load())
	return nil
}

type SearchCmd struct {
	Query []string `arg:"" optional:"" help:"Search text. Empty clears the search."`
}

func (c *SearchCmd) Run(a *app) error {
	a.state.Dispatch(state.SetSearchQuery{Query: strings.Join(c.Query, " ")})
	a.render(a.load())
	return nil
}

type CategoryCmd struct {
	Name string `arg:"" optional:"" default:"all" enum:"all,sport,news,politics" help:"One of all, sport, news, politics."`
}

func (c *CategoryCmd) Run(a *app) error {
	a.state.Dispatch(state.SetActiveCategory{Category: c.Name})
	a.render(a.load())
	return nil
}

type MoreCmd struct{}

func (c *MoreCmd) Run(a *app) error {
	posts := a.load()
	s := a.state.State()
	v := feed.FromState(posts, s)
	if !v.HasMore {
		fmt.Fprintln(a.out, "No more posts.")
		return nil
	}
	a.state.Dispatch(feed.LoadMore(v, s.PostsPerPage))
	a.render(posts)
	return nil
}

type ShowCmd struct {
	ID int64 `arg:"" help:"Post id."`
}

func (c *ShowCmd) Run(a *app) error {
	a.load()
	p, err := a.posts.Get(a.ctx, c.ID)
	if err != nil {
		return a.fail(err)
	}
	a.state.Dispatch(state.SetSelectedPost{Post: &p})
	a.renderPost(p)
	return nil
}

type LoginCmd struct {
	Username string `short:"u" default:"admin" help:"Admin username."`
	Password string `short:"p" required:"" env:"DAILYPOST_PASSWORD" help:"Admin password."`
}

func (c *LoginCmd) Run(a *app) error {
	admin, err := a.gate.Login(a.ctx, c.Username, c.Password)
	if err != nil {
		return a.fail(err)
	}
	if a.api != nil {
		if err := a.kv.Set(a.ctx, tokenKey, a.api.Token()); err != nil {
			return a.fail(fmt.Errorf("save token: %w", err))
		}
	}
	fmt.Fprintf(a.out, "Logged in as %s.\n", admin.Username)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(a *app) error {
	a.gate.Logout(a.ctx)
	if err := a.kv.Remove(a.ctx, tokenKey); err != nil {
		a.log.Sugar().Warnf("failed to remove token: %v", err)
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

type CreateCmd struct {
	Title    string `required:"" help:"Headline."`
	Excerpt  string `required:"" help:"Summary shown in the feed."`
	Content  string `required:"" help:"Article body."`
	Category string `default:"news" enum:"news,sport,politics" help:"Section."`
	Author   string `help:"Byline. Defaults to Admin."`
	Image    string `help:"Image URL."`
	Featured bool   `help:"Feature the post."`
}

func (c *CreateCmd) Run(a *app) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	p, err := a.posts.Create(a.ctx, models.Draft{
		Title:    c.Title,
		Excerpt:  c.Excerpt,
		Content:  c.Content,
		Category: models.Category(c.Category),
		Author:   c.Author,
		Image:    c.Image,
		Featured: c.Featured,
	})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Post created successfully (id %d).\n", p.ID)
	return nil
}

type EditCmd struct {
	ID       int64  `arg:"" help:"Post id."`
	Title    string `help:"New headline."`
	Excerpt  string `help:"New summary."`
	Content  string `help:"New body."`
	Category string `help:"New section: news, sport or politics."`
	Author   string `help:"New byline."`
	Image    string `help:"New image URL."`
}

func (c *EditCmd) Run(a *app) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	p, err := a.posts.Get(a.ctx, c.ID)
	if err != nil {
		return a.fail(err)
	}
	if c.Title != "" {
		p.Title = c.Title
	}
	if c.Excerpt != "" {
		p.Excerpt = c.Excerpt
	}
	if c.Content != "" {
		p.Content = c.Content
	}
	if c.Category != "" {
		p.Category = models.Category(c.Category)
	}
	if c.Author != "" {
		p.Author = c.Author
	}
	if c.Image != "" {
		p.Image = models.StringPtr(c.Image)
	}
	updated, err := a.posts.Update(a.ctx, p)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Post updated successfully (%s).\n", updated.ReadTime)
	return nil
}

type DeleteCmd struct {
	ID int64 `arg:"" help:"Post id."`
}

func (c *DeleteCmd) Run(a *app) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	if err := a.posts.Delete(a.ctx, c.ID); err != nil {
		return a.fail(err)
	}
	if sel := a.state.State().SelectedPost; sel != nil && sel.ID == c.ID {
		a.state.Dispatch(state.SetSelectedPost{})
	}
	fmt.Fprintln(a.out, "Post deleted successfully.")
	return nil
}

type HashPasswordCmd struct {
	Password string `arg:"" help:"Password to hash."`
}

func (c *HashPasswordCmd) Run(a *app) error {
	h, err := auth.HashPassword(c.Password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, h)
	return nil
}
