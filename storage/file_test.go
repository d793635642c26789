package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.json")

	f, err := NewFile(path, 0)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, AdminAuthKey, "true"))

	other, err := NewFile(path, 0)
	require.NoError(t, err)
	v, ok, err := other.Get(ctx, AdminAuthKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	require.NoError(t, other.Remove(ctx, AdminAuthKey))
	_, ok, err = f.Get(ctx, AdminAuthKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFile_Quota(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f, err := NewFile(filepath.Join(t.TempDir(), "storage.json"), 8)
	require.NoError(t, err)

	require.NoError(t, f.Set(ctx, "k", "1234567"))
	require.ErrorIs(t, f.Set(ctx, "k2", "1"), ErrQuotaExceeded)
}

func TestFile_CorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	f, err := NewFile(path, 0)
	require.NoError(t, err)
	_, _, err = f.Get(context.Background(), PostsKey)
	require.Error(t, err)
}

func TestNewFile_EmptyPath(t *testing.T) {
	t.Parallel()
	_, err := NewFile("", 0)
	require.Error(t, err)
}
