package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailypost/dailypost/client"
	"github.com/dailypost/dailypost/models"
)

func reply(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": status < 300,
		"message": message,
		"data":    data,
	})
}

func TestRemote_LoadFailureFallsBackToEmpty(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusInternalServerError, "boom", nil)
	}))
	defer srv.Close()

	r := NewRemote(client.New(srv.URL), nil)
	posts, err := r.Load(context.Background())
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Empty(t, posts)
}

func TestRemote_MapsStatusCodes(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			reply(w, http.StatusNotFound, "Post not found", nil)
		case http.MethodPut:
			reply(w, http.StatusBadRequest, "Content cannot be empty", nil)
		case http.MethodDelete:
			reply(w, http.StatusNotFound, "Post not found", nil)
		}
	}))
	defer srv.Close()

	r := NewRemote(client.New(srv.URL), nil)
	ctx := context.Background()

	_, err := r.Get(ctx, 5)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.Update(ctx, models.Post{ID: 5, Title: "t", Excerpt: "e", Content: "c"})
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, r.Delete(ctx, 5), "deleting a missing post is a no-op")
}

func TestRemote_CategoryFallbackFiltersCache(t *testing.T) {
	t.Parallel()
	posts := []models.Post{
		{ID: 2, Category: models.CategorySport},
		{ID: 1, Category: models.CategoryNews},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("category") != "" {
			reply(w, http.StatusServiceUnavailable, "down", nil)
			return
		}
		reply(w, http.StatusOK, "", posts)
	}))
	defer srv.Close()

	r := NewRemote(client.New(srv.URL), nil)
	ctx := context.Background()
	_, err := r.Load(ctx)
	require.NoError(t, err)

	got, err := r.ByCategory(ctx, "SPORT")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestRemote_CreateReloads(t *testing.T) {
	t.Parallel()
	var lists atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			reply(w, http.StatusCreated, "created", models.Post{ID: 9, Title: "New"})
		default:
			lists.Add(1)
			reply(w, http.StatusOK, "", []models.Post{{ID: 9, Title: "New"}})
		}
	}))
	defer srv.Close()

	r := NewRemote(client.New(srv.URL), nil)
	p, err := r.Create(context.Background(), models.Draft{
		Title: "New", Excerpt: "e", Content: "c", Category: models.CategoryNews,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
	assert.Equal(t, int32(1), lists.Load())

	_, err = r.Create(context.Background(), models.Draft{Title: "missing the rest"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int32(1), lists.Load(), "invalid drafts never reach the server")
}

func TestRemote_UpdateRequiresTextFields(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		reply(w, http.StatusOK, "", models.Post{ID: 3})
	}))
	defer srv.Close()

	r := NewRemote(client.New(srv.URL), nil)
	_, err := r.Update(context.Background(), models.Post{ID: 3, Title: "", Excerpt: "e", Content: "c"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = r.Update(context.Background(), models.Post{ID: 3, Title: "t", Excerpt: "", Content: "c"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, calls.Load())
}
