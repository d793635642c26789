// Package store owns the canonical list of posts. Local keeps it in a
// storage.KV namespace; Remote proxies the REST API. Both satisfy Posts so a
// deployment can swap one for the other.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dailypost/dailypost/models"
)

// KeepImages is how many of the most recent posts keep their image when the
// storage quota forces a cleanup.
const KeepImages = 5

var (
	// ErrNotFound is returned when no post has the requested id.
	ErrNotFound = errors.New("post not found")
	// ErrValidation is returned for drafts or posts missing required fields.
	ErrValidation = errors.New("invalid post")
	// ErrStorageFull is returned when a write still exceeds the quota after
	// older images were stripped.
	ErrStorageFull = errors.New("storage quota exceeded, please delete some posts or use smaller images")
	// ErrUnavailable is returned by mutations while the stored collection
	// cannot be read, so an empty fallback is never written over it.
	ErrUnavailable = errors.New("stored posts are unavailable")
)

// LoadError is the non-fatal error returned by Load alongside the fallback
// collection when persisted posts could not be read.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return "failed to load posts: " + e.Err.Error() }

func (e *LoadError) Unwrap() error { return e.Err }

// Posts is the post store contract.
type Posts interface {
	// Load (re)reads the persisted collection and returns it.
	Load(ctx context.Context) ([]models.Post, error)
	// All returns the current collection, most recent first.
	All(ctx context.Context) ([]models.Post, error)
	// Get returns the post with the given id or ErrNotFound.
	Get(ctx context.Context, id int64) (models.Post, error)
	// ByCategory returns posts in the category; "all" matches everything.
	ByCategory(ctx context.Context, category string) ([]models.Post, error)
	// Featured returns posts flagged as featured.
	Featured(ctx context.Context) ([]models.Post, error)
	// Create publishes a new post from a draft.
	Create(ctx context.Context, draft models.Draft) (models.Post, error)
	// Update replaces an existing post.
	Update(ctx context.Context, post models.Post) (models.Post, error)
	// Delete removes a post; deleting a missing id is a no-op.
	Delete(ctx context.Context, id int64) error
}

// Degrader is implemented by stores that can serve a fallback collection
// instead of the stored one.
type Degrader interface {
	// Degraded reports whether the last load failed and queries are being
	// answered from a fallback.
	Degraded() bool
}

// validateUpdate checks the fields an update must carry.
func validateUpdate(post models.Post) error {
	if post.ID == 0 {
		return fmt.Errorf("%w: missing post id", ErrValidation)
	}
	var missing []string
	if post.Title == "" {
		missing = append(missing, "title")
	}
	if post.Excerpt == "" {
		missing = append(missing, "excerpt")
	}
	if post.Content == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// StripImages returns a copy of posts where every post past the first keep
// entries has no image.
func StripImages(posts []models.Post, keep int) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)
	for i := keep; i < len(out); i++ {
		out[i].Image = nil
	}
	return out
}

func filterCategory(posts []models.Post, category string) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.MatchesCategory(category) {
			out = append(out, p)
		}
	}
	return out
}

func filterFeatured(posts []models.Post) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

func findPost(posts []models.Post, id int64) (models.Post, error) {
	for _, p := range posts {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Post{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
}

func clonePosts(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)
	return out
}
