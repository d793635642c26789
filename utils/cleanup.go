package utils

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dailypost/dailypost/store"
)

// UploadURLPrefix is the public path uploaded images are served under.
const UploadURLPrefix = "/uploads/"

// CleanOrphanUploads deletes files in dir that no post references and that
// were last modified before cutoff. It returns how many files were removed,
// or store.ErrUnavailable without touching anything while posts is degraded.
func CleanOrphanUploads(ctx context.Context, dir string, posts store.Posts, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	all, err := posts.All(ctx)
	if err != nil {
		return 0, err
	}
	// A fallback collection references nothing, so every upload would look orphaned
	if d, ok := posts.(store.Degrader); ok && d.Degraded() {
		return 0, store.ErrUnavailable
	}
	referenced := make(map[string]bool, len(all))
	for _, p := range all {
		if p.HasImage() {
			referenced[path.Base(*p.Image)] = true
		}
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || referenced[e.Name()] {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			Sugar.Warnf("upload cleaner remove failed file=%s err=%v", e.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

// StartUploadCleaner periodically removes uploads no post references. Files
// younger than grace are kept.
func StartUploadCleaner(ctx context.Context, dir string, posts store.Posts, interval, grace time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			n, err := CleanOrphanUploads(ctx, dir, posts, time.Now().Add(-grace))
			if err != nil {
				Sugar.Warnf("upload cleaner failed: %v", err)
				continue
			}
			if n > 0 {
				Sugar.Infof("upload cleaner removed %d orphan files", n)
			}
		}
	}()
}
