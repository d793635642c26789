package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dailypost/dailypost/client"
	"github.com/dailypost/dailypost/models"
	"github.com/dailypost/dailypost/state"
	"github.com/dailypost/dailypost/storage"
)

func TestFixedCredential(t *testing.T) {
	t.Parallel()
	a := NewFixedCredential("", "")

	admin, err := a.Authenticate(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)

	_, err = a.Authenticate(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid username or password. Please try again.", err.Error())
}

func TestBcryptCredential(t *testing.T) {
	t.Parallel()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	a := NewBcryptCredential("editor", string(hash))

	_, err = a.Authenticate(context.Background(), "editor", "s3cret")
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), "editor", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate(context.Background(), "admin", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGate_WrongPasswordLeavesStateAndStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := storage.NewMemory(0)
	c := state.NewContainer(state.WithStorage(ctx, kv, nil))
	g := NewGate(NewFixedCredential("", ""), c, nil)

	before := c.State()
	_, err := g.Login(ctx, "admin", "letmein")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, before, c.State())

	_, ok, err := kv.Get(ctx, storage.AdminAuthKey)
	require.NoError(t, err)
	assert.False(t, ok, "nothing persisted")
}

func TestGate_LoginAndLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := storage.NewMemory(0)
	c := state.NewContainer(state.WithStorage(ctx, kv, nil))
	g := NewGate(NewFixedCredential("", ""), c, nil)

	_, err := g.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.True(t, c.State().AdminAuthenticated)
	assert.True(t, c.State().AdminMode)
	v, _, _ := kv.Get(ctx, storage.AdminAuthKey)
	assert.Equal(t, "true", v)

	g.Logout(ctx)
	assert.False(t, c.State().AdminAuthenticated)
	assert.False(t, c.State().AdminMode)
	v, _, _ = kv.Get(ctx, storage.AdminAuthKey)
	assert.Equal(t, "false", v)
}

func TestRemote(t *testing.T) {
	t.Parallel()
	var loggedOut bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/admin/login":
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in["password"] != "admin123" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Invalid credentials"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    client.LoginResult{Token: "t", Admin: models.Admin{Username: "admin"}},
			})
		case "/admin/logout":
			loggedOut = true
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
		}
	}))
	defer srv.Close()

	c := state.NewContainer()
	g := NewGate(Remote{API: client.New(srv.URL)}, c, nil)

	_, err := g.Login(context.Background(), "admin", "bad")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, c.State().AdminAuthenticated)

	admin, err := g.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)
	assert.True(t, c.State().AdminAuthenticated)

	g.Logout(context.Background())
	assert.True(t, loggedOut)
	assert.False(t, c.State().AdminMode)
}
