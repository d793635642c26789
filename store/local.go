package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dailypost/dailypost/models"
	"github.com/dailypost/dailypost/storage"
)

// Local is the post store backed by a storage.KV namespace.
type Local struct {
	kv  storage.KV
	log *zap.Logger
	now func() time.Time

	mu    sync.Mutex
	posts []models.Post
	// loaded is set once the stored value was read, even if it failed to
	// decode. A read error leaves it unset so the next call retries.
	loaded  bool
	loadErr error

	obsMu     sync.Mutex
	observers map[int]func([]models.Post)
	nextObsID int
}

var _ Posts = (*Local)(nil)

// Option configures a Local store.
type Option func(*Local)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Local) { s.log = l }
}

// WithClock overrides time.Now for ids and dates.
func WithClock(now func() time.Time) Option {
	return func(s *Local) { s.now = now }
}

// NewLocal creates a store over kv. Nothing is read until Load or the first query.
func NewLocal(kv storage.KV, opts ...Option) *Local {
	s := &Local{
		kv:        kv,
		log:       zap.NewNop(),
		now:       time.Now,
		observers: map[int]func([]models.Post){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted collection. A missing key seeds DefaultPosts and
// persists them. If the stored value cannot be read or decoded, the
// collection is empty and Load returns it together with a *LoadError.
func (s *Local) Load(ctx context.Context) ([]models.Post, error) {
	s.mu.Lock()
	err := s.loadLocked(ctx)
	posts := clonePosts(s.posts)
	s.mu.Unlock()

	s.notify(posts)
	return posts, err
}

func (s *Local) loadLocked(ctx context.Context) error {
	s.loaded = false
	s.loadErr = nil

	raw, ok, err := s.kv.Get(ctx, storage.PostsKey)
	if err != nil {
		s.posts = []models.Post{}
		s.loadErr = &LoadError{Err: err}
		s.log.Error("failed to read posts", zap.Error(err))
		return s.loadErr
	}

	if !ok {
		defaults := DefaultPosts(s.now())
		if err := s.writeLocked(ctx, defaults); err != nil {
			s.posts = []models.Post{}
			s.loadErr = &LoadError{Err: err}
			s.log.Error("failed to persist default posts", zap.Error(err))
			return s.loadErr
		}
		s.posts = defaults
		s.loaded = true
		s.log.Info("seeded default posts", zap.Int("count", len(defaults)))
		return nil
	}

	s.loaded = true
	var posts []models.Post
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		s.posts = []models.Post{}
		s.loadErr = &LoadError{Err: err}
		s.log.Error("failed to decode posts", zap.Error(err))
		return s.loadErr
	}
	if posts == nil {
		posts = []models.Post{}
	}
	s.posts = posts
	return nil
}

// ensureLoadedLocked loads unless the stored value was already read. A
// LoadError is already logged and the fallback collection is served.
func (s *Local) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	err := s.loadLocked(ctx)
	var le *LoadError
	if errors.As(err, &le) {
		return nil
	}
	return err
}

// ensureWritableLocked is ensureLoadedLocked for mutations: they fail while
// the stored value could not be read, so the fallback never replaces it.
func (s *Local) ensureWritableLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	if err := s.loadLocked(ctx); !s.loaded {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Degraded implements Degrader.
func (s *Local) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr != nil
}

// All implements Posts.
func (s *Local) All(ctx context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return clonePosts(s.posts), nil
}

// Get implements Posts.
func (s *Local) Get(ctx context.Context, id int64) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return models.Post{}, err
	}
	return findPost(s.posts, id)
}

// ByCategory implements Posts.
func (s *Local) ByCategory(ctx context.Context, category string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return filterCategory(s.posts, category), nil
}

// Featured implements Posts.
func (s *Local) Featured(ctx context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return filterFeatured(s.posts), nil
}

// Create implements Posts. The new post is prepended so the collection stays
// most-recent-first.
func (s *Local) Create(ctx context.Context, draft models.Draft) (models.Post, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return models.Post{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	if err := s.ensureWritableLocked(ctx); err != nil {
		s.mu.Unlock()
		return models.Post{}, err
	}

	now := s.now()
	post := models.Post{
		ID:       s.nextIDLocked(now),
		Title:    draft.Title,
		Excerpt:  draft.Excerpt,
		Content:  draft.Content,
		Category: draft.Category,
		Author:   draft.Author,
		Date:     now.UTC(),
		ReadTime: models.ReadTime(draft.Content),
		Image:    models.StringPtr(draft.Image),
		Featured: draft.Featured,
	}

	next := make([]models.Post, 0, len(s.posts)+1)
	next = append(next, post)
	next = append(next, s.posts...)
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Post{}, err
	}
	posts := clonePosts(s.posts)
	s.mu.Unlock()

	s.log.Info("post created", zap.Int64("id", post.ID), zap.String("category", string(post.Category)))
	s.notify(posts)
	return post, nil
}

// Update implements Posts. Title, excerpt and content are required. The
// stored date and featured flag are kept; the read time is recomputed from
// the new content.
func (s *Local) Update(ctx context.Context, post models.Post) (models.Post, error) {
	if err := validateUpdate(post); err != nil {
		return models.Post{}, err
	}

	s.mu.Lock()
	if err := s.ensureWritableLocked(ctx); err != nil {
		s.mu.Unlock()
		return models.Post{}, err
	}

	idx := -1
	for i, p := range s.posts {
		if p.ID == post.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return models.Post{}, fmt.Errorf("post %d: %w", post.ID, ErrNotFound)
	}
	existing := s.posts[idx]

	switch {
	case post.Category == "":
		post.Category = existing.Category
	default:
		c, ok := models.ParseCategory(string(post.Category))
		if !ok {
			s.mu.Unlock()
			return models.Post{}, fmt.Errorf("%w: unknown category %q", ErrValidation, post.Category)
		}
		post.Category = c
	}
	if post.Author == "" {
		post.Author = models.DefaultAuthor
	}
	post.Date = existing.Date
	post.Featured = existing.Featured
	post.ReadTime = models.ReadTime(post.Content)

	next := clonePosts(s.posts)
	next[idx] = post
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Post{}, err
	}
	updated := s.posts[idx]
	posts := clonePosts(s.posts)
	s.mu.Unlock()

	s.log.Info("post updated", zap.Int64("id", post.ID))
	s.notify(posts)
	return updated, nil
}

// Delete implements Posts.
func (s *Local) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	if err := s.ensureWritableLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}

	next := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if p.ID != id {
			next = append(next, p)
		}
	}
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	posts := clonePosts(s.posts)
	s.mu.Unlock()

	s.log.Info("post deleted", zap.Int64("id", id))
	s.notify(posts)
	return nil
}

// Subscribe registers fn to receive the collection after every successful
// mutation or load. The returned func removes it.
func (s *Local) Subscribe(fn func([]models.Post)) func() {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

// Watch reloads the collection whenever the posts key shows up on changes,
// until ctx is done or the channel closes.
func (s *Local) Watch(ctx context.Context, changes <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case key, ok := <-changes:
			if !ok {
				return
			}
			if key != storage.PostsKey {
				continue
			}
			if _, err := s.Load(ctx); err != nil {
				s.log.Warn("reload after change notification failed", zap.Error(err))
			}
		}
	}
}

// WatchNotifier subscribes to n and runs Watch in the background.
func (s *Local) WatchNotifier(ctx context.Context, n storage.Notifier) error {
	changes, err := n.Subscribe(ctx)
	if err != nil {
		return err
	}
	go s.Watch(ctx, changes)
	return nil
}

// commitLocked persists next and makes it the in-memory collection. On a
// quota error, images past the KeepImages most recent posts are stripped and
// the write is retried once. If nothing could be written the in-memory
// collection is left untouched.
func (s *Local) commitLocked(ctx context.Context, next []models.Post) error {
	err := s.writeLocked(ctx, next)
	if err == nil {
		s.posts = next
		s.loadErr = nil
		return nil
	}
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		return fmt.Errorf("failed to persist posts: %w", err)
	}

	s.log.Warn("storage quota exceeded, stripping images from older posts",
		zap.Int("posts", len(next)),
		zap.Int("keep_images", KeepImages),
	)
	stripped := StripImages(next, KeepImages)
	if err := s.writeLocked(ctx, stripped); err != nil {
		s.log.Error("failed to persist posts after cleanup", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorageFull, err)
	}
	s.log.Info("storage cleanup successful")
	s.posts = stripped
	s.loadErr = nil
	return nil
}

func (s *Local) writeLocked(ctx context.Context, posts []models.Post) error {
	b, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to encode posts: %w", err)
	}
	return s.kv.Set(ctx, storage.PostsKey, string(b))
}

// nextIDLocked is time based but never collides with, or sorts below, an existing id.
func (s *Local) nextIDLocked(now time.Time) int64 {
	id := now.UnixMilli()
	for _, p := range s.posts {
		if p.ID >= id {
			id = p.ID + 1
		}
	}
	return id
}

func (s *Local) notify(posts []models.Post) {
	s.obsMu.Lock()
	fns := make([]func([]models.Post), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(clonePosts(posts))
	}
}
