package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailypost/dailypost/auth"
	"github.com/dailypost/dailypost/client"
	"github.com/dailypost/dailypost/config"
	"github.com/dailypost/dailypost/models"
	"github.com/dailypost/dailypost/storage"
	"github.com/dailypost/dailypost/store"
	"github.com/dailypost/dailypost/utils"
)

type testServer struct {
	*httptest.Server
	posts *store.Local
	api   *client.Client
}

func newTestServer(t *testing.T, mutate func(*config.AppConfig)) *testServer {
	t.Helper()
	return newTestServerWithKV(t, storage.NewMemory(0), mutate)
}

func newTestServerWithKV(t *testing.T, kv storage.KV, mutate func(*config.AppConfig)) *testServer {
	t.Helper()
	dir := t.TempDir()
	cfg := config.AppConfig{
		JWTSecret:          "test-secret",
		GinMode:            "test",
		GinPath:            filepath.Join(dir, "gin.log"),
		UploadDir:          filepath.Join(dir, "uploads"),
		RateLimitPerMinute: 1000,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	config.Set(cfg)

	posts := store.NewLocal(kv)
	r := SetupRouter(Dependencies{
		Posts: posts,
		Auth:  auth.NewFixedCredential("", ""),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, posts: posts, api: client.New(srv.URL + "/api")}
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	_, err := s.api.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
}

func requireStatus(t *testing.T, err error, status int) *client.RemoteError {
	t.Helper()
	var re *client.RemoteError
	require.ErrorAs(t, err, &re)
	require.Equal(t, status, re.Status, re.Message)
	return re
}

func TestRouter_HealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.api.Health(context.Background()))

	resp, err := http.Get(s.URL + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRouter_ListPosts(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	all, err := s.api.ListPosts(ctx, client.ListParams{})
	require.NoError(t, err)
	assert.Len(t, all, 6)

	sport, err := s.api.ListPosts(ctx, client.ListParams{Category: "sport"})
	require.NoError(t, err)
	assert.Len(t, sport, 2)

	found, err := s.api.ListPosts(ctx, client.ListParams{Category: "politics", Search: "SENATE"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(4), found[0].ID)

	window, err := s.api.ListPosts(ctx, client.ListParams{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, all[4:], window)
}

func TestRouter_GetPost(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	p, err := s.api.GetPost(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.CategorySport, p.Category)

	_, err = s.api.GetPost(ctx, 999)
	re := requireStatus(t, err, http.StatusNotFound)
	assert.Equal(t, "Post not found", re.Message)
}

func TestRouter_WritesRequireAdmin(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	_, err := s.api.CreatePost(ctx, models.Draft{Title: "t", Excerpt: "e", Content: "c"}, nil)
	requireStatus(t, err, http.StatusUnauthorized)

	err = s.api.DeletePost(ctx, 1)
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = s.api.Login(ctx, "admin", "wrong")
	re := requireStatus(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Invalid username or password. Please try again.", re.Message)
}

func TestRouter_CreateWithImage(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()
	s.login(t)

	d := models.Draft{
		Title:    "<b>Derby</b> day",
		Excerpt:  "City won.",
		Content:  strings.Repeat("word ", 201) + "<script>alert(1)</script>",
		Category: "sport",
	}
	post, err := s.api.CreatePost(ctx, d, &client.Image{Name: "photo.PNG", Body: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "Derby day", post.Title)
	assert.Equal(t, models.CategorySport, post.Category)
	assert.Equal(t, models.DefaultAuthor, post.Author)
	assert.Equal(t, "2 min read", post.ReadTime)
	assert.NotContains(t, post.Content, "<script>")
	require.True(t, post.HasImage())
	assert.True(t, strings.HasPrefix(*post.Image, utils.UploadURLPrefix))

	resp, err := http.Get(s.URL + *post.Image)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "png-bytes", string(body))

	all, err := s.posts.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, post.ID, all[0].ID)
}

func TestRouter_CreateValidation(t *testing.T) {
	s := newTestServer(t, nil)
	s.login(t)

	_, err := s.api.CreatePost(context.Background(), models.Draft{Title: "only a title"}, nil)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = s.api.CreatePost(context.Background(),
		models.Draft{Title: "t", Excerpt: "e", Content: "c"},
		&client.Image{Name: "script.sh", Body: strings.NewReader("#!/bin/sh")})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestRouter_UpdateAndDelete(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()
	s.login(t)

	orig, err := s.api.GetPost(ctx, 2)
	require.NoError(t, err)

	edit := orig
	edit.Content = "Short update."
	edit.Image = nil
	updated, err := s.api.UpdatePost(ctx, edit, nil)
	require.NoError(t, err)
	assert.Equal(t, "Short update.", updated.Content)
	assert.Equal(t, "1 min read", updated.ReadTime)
	assert.True(t, orig.Date.Equal(updated.Date))

	edit.Content = ""
	_, err = s.api.UpdatePost(ctx, edit, nil)
	requireStatus(t, err, http.StatusBadRequest)

	edit.ID = 999
	edit.Content = "x"
	_, err = s.api.UpdatePost(ctx, edit, nil)
	requireStatus(t, err, http.StatusNotFound)

	require.NoError(t, s.api.DeletePost(ctx, 2))
	require.NoError(t, s.api.DeletePost(ctx, 2))
	_, err = s.api.GetPost(ctx, 2)
	requireStatus(t, err, http.StatusNotFound)
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()
	s.login(t)
	token := s.api.Token()

	require.NoError(t, s.api.Logout(ctx))

	stale := client.New(s.URL+"/api", client.WithToken(token))
	err := stale.DeletePost(ctx, 1)
	re := requireStatus(t, err, http.StatusUnauthorized)
	assert.Equal(t, "token revoked", re.Message)
}

func TestRouter_Stats(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := http.Get(s.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"success":true,"data":{"total":6,"featured":3,"withImage":0,"byCategory":{"NEWS":2,"SPORT":2,"POLITICS":2}}}`, string(body))
}

func TestRouter_ListCacheIsInvalidatedByWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	utils.SetRedis(rc)
	t.Cleanup(func() { utils.SetRedis(nil) })

	s := newTestServer(t, func(c *config.AppConfig) {
		c.CacheEnabled = true
		c.CacheTTLSeconds = 60
	})
	ctx := context.Background()

	_, err := s.api.ListPosts(ctx, client.ListParams{Category: "news"})
	require.NoError(t, err)
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], utils.PostListCachePrefix))

	s.login(t)
	_, err = s.api.CreatePost(ctx, models.Draft{Title: "t", Excerpt: "e", Content: "c", Category: "NEWS"}, nil)
	require.NoError(t, err)
	for _, k := range mr.Keys() {
		assert.False(t, strings.HasPrefix(k, utils.PostListCachePrefix), "stale cache key %s", k)
	}

	news, err := s.api.ListPosts(ctx, client.ListParams{Category: "news"})
	require.NoError(t, err)
	assert.Len(t, news, 3)
}

func TestRouter_RemoteStoreAgainstServer(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()
	s.login(t)

	remote := store.NewRemote(s.api, nil)
	posts, err := remote.Load(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 6)

	created, err := remote.Create(ctx, models.Draft{Title: "Remote", Excerpt: "e", Content: "c", Category: "POLITICS"})
	require.NoError(t, err)

	got, err := remote.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Remote", got.Title)

	featured, err := remote.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 3)

	_, err = remote.Update(ctx, models.Post{ID: 424242, Title: "t", Excerpt: "e", Content: "x"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

// unreadableKV fails every read.
type unreadableKV struct{ storage.KV }

func (unreadableKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection reset")
}

func TestRouter_WritesRefusedWhileStorageUnreadable(t *testing.T) {
	mem := storage.NewMemory(0)
	s := newTestServerWithKV(t, unreadableKV{KV: mem}, nil)
	ctx := context.Background()
	s.login(t)

	_, err := s.api.CreatePost(ctx, models.Draft{Title: "t", Excerpt: "e", Content: "c"}, nil)
	requireStatus(t, err, http.StatusServiceUnavailable)
	err = s.api.DeletePost(ctx, 1)
	requireStatus(t, err, http.StatusServiceUnavailable)

	_, ok, err := mem.Get(ctx, storage.PostsKey)
	require.NoError(t, err)
	assert.False(t, ok, "nothing may be written over unreadable storage")
}
