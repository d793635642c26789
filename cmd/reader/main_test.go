package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dailypost/dailypost/auth"
	"github.com/dailypost/dailypost/config"
	"github.com/dailypost/dailypost/routes"
	"github.com/dailypost/dailypost/storage"
	"github.com/dailypost/dailypost/store"
)

func newTestApp(t *testing.T, kv storage.KV) (*app, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	return assemble(context.Background(), kv, "", buf, zap.NewNop()), buf
}

func login(t *testing.T, a *app) {
	t.Helper()
	require.NoError(t, (&LoginCmd{Username: "admin", Password: "admin123"}).Run(a))
}

func TestParser(t *testing.T) {
	cli := &CLI{}
	p, err := newParser(cli, kong.Exit(func(int) {}), kong.Writers(io.Discard, io.Discard))
	require.NoError(t, err)

	kctx, err := p.Parse([]string{})
	require.NoError(t, err)
	assert.Equal(t, "list", kctx.Command())

	_, err = p.Parse([]string{"category", "sport"})
	require.NoError(t, err)
	assert.Equal(t, "sport", cli.Category.Name)

	_, err = p.Parse([]string{"category", "weather"})
	assert.Error(t, err)
}

func TestList_FirstPage(t *testing.T) {
	a, out := newTestApp(t, storage.NewMemory(0))
	require.NoError(t, (&ListCmd{}).Run(a))

	assert.Contains(t, out.String(), "Daily Post | All")
	assert.Contains(t, out.String(), "Showing 6 of 6 posts")
	assert.NotContains(t, out.String(), "reader more")
	assert.False(t, a.state.State().Loading)
}

func TestSearch_PersistsBetweenRuns(t *testing.T) {
	kv := storage.NewMemory(0)
	a, out := newTestApp(t, kv)

	require.NoError(t, (&SearchCmd{Query: []string{"senate"}}).Run(a))
	assert.Contains(t, out.String(), "Senate Passes Landmark Healthcare Reform Bill")
	assert.Contains(t, out.String(), "Showing 1 of 1 posts")

	next, _ := newTestApp(t, kv)
	s := next.state.State()
	assert.Equal(t, "senate", s.SearchQuery)
	assert.Equal(t, 1, s.CurrentPage)

	out.Reset()
	require.NoError(t, (&SearchCmd{Query: []string{"no", "such", "story"}}).Run(a))
	assert.Contains(t, out.String(), "No posts found")
	assert.Contains(t, out.String(), "Try adjusting your search terms")
}

func TestCategory_Filters(t *testing.T) {
	a, out := newTestApp(t, storage.NewMemory(0))
	require.NoError(t, (&CategoryCmd{Name: "sport"}).Run(a))

	assert.Contains(t, out.String(), "Daily Post | Sport")
	assert.Contains(t, out.String(), "Showing 2 of 2 posts")
	assert.Contains(t, out.String(), "NBA Finals Game 7")
}

func TestMore_LoadsNextPage(t *testing.T) {
	kv := storage.NewMemory(0)
	a, out := newTestApp(t, kv)
	login(t, a)
	for _, title := range []string{"Extra one", "Extra two"} {
		require.NoError(t, (&CreateCmd{Title: title, Excerpt: "e", Content: "c", Category: "news"}).Run(a))
	}

	out.Reset()
	require.NoError(t, (&ListCmd{}).Run(a))
	assert.Contains(t, out.String(), "Showing 6 of 8 posts")
	assert.Contains(t, out.String(), "reader more")

	out.Reset()
	require.NoError(t, (&MoreCmd{}).Run(a))
	assert.Contains(t, out.String(), "Showing 8 of 8 posts")

	next, nextOut := newTestApp(t, kv)
	assert.Equal(t, 2, next.state.State().CurrentPage)
	require.NoError(t, (&MoreCmd{}).Run(next))
	assert.Contains(t, nextOut.String(), "No more posts.")

	// Changing the filter rewinds to the first page
	require.NoError(t, (&CategoryCmd{Name: "all"}).Run(next))
	assert.Equal(t, 1, next.state.State().CurrentPage)
}

func TestAdminCommands_RequireLogin(t *testing.T) {
	a, _ := newTestApp(t, storage.NewMemory(0))

	err := (&CreateCmd{Title: "t", Excerpt: "e", Content: "c", Category: "news"}).Run(a)
	require.ErrorIs(t, err, errAdminRequired)
	assert.Equal(t, errAdminRequired.Error(), a.state.State().Error)

	assert.ErrorIs(t, (&EditCmd{ID: 1, Content: "x"}).Run(a), errAdminRequired)
	assert.ErrorIs(t, (&DeleteCmd{ID: 1}).Run(a), errAdminRequired)
}

func TestLoginLogout_Persisted(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory(0)
	a, _ := newTestApp(t, kv)

	err := (&LoginCmd{Username: "admin", Password: "nope"}).Run(a)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.False(t, a.state.State().AdminAuthenticated)
	assert.Equal(t, auth.ErrInvalidCredentials.Error(), a.state.State().Error)

	login(t, a)
	v, ok, err := kv.Get(ctx, storage.AdminAuthKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", v)

	next, _ := newTestApp(t, kv)
	assert.True(t, next.state.State().AdminAuthenticated)

	require.NoError(t, (&LogoutCmd{}).Run(next))
	v, _, _ = kv.Get(ctx, storage.AdminAuthKey)
	assert.Equal(t, "false", v)
	assert.False(t, next.state.State().AdminMode)
}

func TestEditShowDelete(t *testing.T) {
	a, out := newTestApp(t, storage.NewMemory(0))
	login(t, a)

	require.NoError(t, (&EditCmd{ID: 2, Content: "<p>Power is <b>back</b>.</p>", Category: "politics"}).Run(a))
	assert.Contains(t, out.String(), "1 min read")

	out.Reset()
	require.NoError(t, (&ShowCmd{ID: 2}).Run(a))
	assert.Contains(t, out.String(), "POLITICS | Kentucky")
	assert.Contains(t, out.String(), "Power is back.")
	require.NotNil(t, a.state.State().SelectedPost)
	assert.Equal(t, int64(2), a.state.State().SelectedPost.ID)

	require.NoError(t, (&DeleteCmd{ID: 2}).Run(a))
	assert.Nil(t, a.state.State().SelectedPost)

	err := (&ShowCmd{ID: 2}).Run(a)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NotEmpty(t, a.state.State().Error)
}

func TestHashPassword(t *testing.T) {
	a, out := newTestApp(t, storage.NewMemory(0))
	require.NoError(t, (&HashPasswordCmd{Password: "s3cret"}).Run(a))

	cred := auth.NewBcryptCredential("admin", string(bytes.TrimSpace(out.Bytes())))
	_, err := cred.Authenticate(context.Background(), "admin", "s3cret")
	assert.NoError(t, err)
}

func TestRemoteMode_TokenSurvivesRuns(t *testing.T) {
	dir := t.TempDir()
	config.Set(config.AppConfig{
		JWTSecret:          "reader-secret",
		GinMode:            "test",
		GinPath:            filepath.Join(dir, "gin.log"),
		UploadDir:          filepath.Join(dir, "uploads"),
		RateLimitPerMinute: 1000,
	})
	srv := httptest.NewServer(routes.SetupRouter(routes.Dependencies{
		Posts: store.NewLocal(storage.NewMemory(0)),
		Auth:  auth.NewFixedCredential("", ""),
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	kv := storage.NewMemory(0)
	remote := func() (*app, *bytes.Buffer) {
		buf := &bytes.Buffer{}
		return assemble(ctx, kv, srv.URL+"/api", buf, zap.NewNop()), buf
	}

	a, _ := remote()
	login(t, a)
	token, ok, err := kv.Get(ctx, tokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	next, out := remote()
	require.NoError(t, (&CreateCmd{Title: "Over the wire", Excerpt: "e", Content: "c", Category: "sport"}).Run(next))
	require.NoError(t, (&CategoryCmd{Name: "sport"}).Run(next))
	assert.Contains(t, out.String(), "Over the wire")
	assert.Contains(t, out.String(), "Showing 3 of 3 posts")

	require.NoError(t, (&LogoutCmd{}).Run(next))
	_, ok, _ = kv.Get(ctx, tokenKey)
	assert.False(t, ok)
}

func TestList_RestoredHugePage(t *testing.T) {
	kv := storage.NewMemory(0)
	require.NoError(t, kv.Set(context.Background(), sessionKey, `{"category":"all","page":3074457345618258602}`))

	a, out := newTestApp(t, kv)
	require.NoError(t, (&ListCmd{}).Run(a))
	assert.Contains(t, out.String(), "Showing 6 of 6 posts")
}
