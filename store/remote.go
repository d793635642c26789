package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/dailypost/dailypost/client"
	"github.com/dailypost/dailypost/models"
)

// Remote is the post store backed by the REST API. The last fetched
// collection is cached and refreshed after every mutation.
type Remote struct {
	api *client.Client
	log *zap.Logger

	mu    sync.Mutex
	posts []models.Post
}

var _ Posts = (*Remote)(nil)

// NewRemote creates a store over api.
func NewRemote(api *client.Client, log *zap.Logger) *Remote {
	if log == nil {
		log = zap.NewNop()
	}
	return &Remote{api: api, log: log, posts: []models.Post{}}
}

// Load fetches every post. On failure the cache is emptied and a *LoadError
// is returned with it.
func (r *Remote) Load(ctx context.Context) ([]models.Post, error) {
	posts, err := r.api.ListPosts(ctx, client.ListParams{})
	if err != nil {
		r.log.Error("failed to load posts", zap.Error(err))
		r.setCache([]models.Post{})
		return []models.Post{}, &LoadError{Err: err}
	}
	r.setCache(posts)
	return clonePosts(posts), nil
}

// All implements Posts.
func (r *Remote) All(ctx context.Context) ([]models.Post, error) {
	posts, err := r.api.ListPosts(ctx, client.ListParams{})
	if err != nil {
		return nil, mapRemote(err)
	}
	r.setCache(posts)
	return posts, nil
}

// Get implements Posts.
func (r *Remote) Get(ctx context.Context, id int64) (models.Post, error) {
	p, err := r.api.GetPost(ctx, id)
	if err != nil {
		return models.Post{}, mapRemote(err)
	}
	return p, nil
}

// ByCategory implements Posts. When the filtered request fails the cached
// collection is filtered instead.
func (r *Remote) ByCategory(ctx context.Context, category string) ([]models.Post, error) {
	posts, err := r.api.ListPosts(ctx, client.ListParams{Category: category})
	if err != nil {
		r.log.Warn("category request failed, filtering cached posts",
			zap.String("category", category), zap.Error(err))
		r.mu.Lock()
		defer r.mu.Unlock()
		return filterCategory(r.posts, category), nil
	}
	return posts, nil
}

// Featured implements Posts.
func (r *Remote) Featured(ctx context.Context) ([]models.Post, error) {
	posts, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterFeatured(posts), nil
}

// Create implements Posts.
func (r *Remote) Create(ctx context.Context, draft models.Draft) (models.Post, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return models.Post{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	p, err := r.api.CreatePost(ctx, draft, nil)
	if err != nil {
		return models.Post{}, mapRemote(err)
	}
	r.refresh(ctx)
	return p, nil
}

// Update implements Posts.
func (r *Remote) Update(ctx context.Context, post models.Post) (models.Post, error) {
	if err := validateUpdate(post); err != nil {
		return models.Post{}, err
	}
	p, err := r.api.UpdatePost(ctx, post, nil)
	if err != nil {
		return models.Post{}, mapRemote(err)
	}
	r.refresh(ctx)
	return p, nil
}

// Delete implements Posts. A 404 from the server counts as success.
func (r *Remote) Delete(ctx context.Context, id int64) error {
	if err := r.api.DeletePost(ctx, id); err != nil {
		if err = mapRemote(err); !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	r.refresh(ctx)
	return nil
}

func (r *Remote) refresh(ctx context.Context) {
	if _, err := r.Load(ctx); err != nil {
		r.log.Warn("reload after mutation failed", zap.Error(err))
	}
}

func (r *Remote) setCache(posts []models.Post) {
	r.mu.Lock()
	r.posts = clonePosts(posts)
	r.mu.Unlock()
}

// mapRemote translates API status codes into store errors.
func mapRemote(err error) error {
	var re *client.RemoteError
	if !errors.As(err, &re) {
		return err
	}
	switch re.Status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, re.Message)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrValidation, re.Message)
	case http.StatusRequestEntityTooLarge, http.StatusInsufficientStorage:
		return fmt.Errorf("%w: %s", ErrStorageFull, re.Message)
	}
	return err
}
