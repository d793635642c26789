// Package storage provides the durable key/value namespace posts and admin
// flags are persisted in. Every backend enforces a byte quota over the whole
// namespace and reports ErrQuotaExceeded when a write would exceed it.
package storage

import (
	"context"
	"errors"
)

// Keys used by the application.
const (
	PostsKey     = "dailyPostArticles"
	AdminAuthKey = "dailyPostAdminAuth"
)

// DefaultQuotaBytes mirrors the usual per-origin browser storage limit.
const DefaultQuotaBytes = 5 * 1024 * 1024

// ErrQuotaExceeded is returned when a write would grow the namespace past its quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KV is a string key/value namespace.
type KV interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Notifier is implemented by backends that announce changed keys, possibly
// made by other processes sharing the namespace.
type Notifier interface {
	// Subscribe returns a channel receiving changed keys until ctx is done.
	Subscribe(ctx context.Context) (<-chan string, error)
}

// usage is the quota cost of one entry, counted like browser storage: key plus value.
func usage(key, value string) int64 {
	return int64(len(key) + len(value))
}

// fits reports whether replacing key's current entry with value stays within quota.
// used is the namespace usage including the current entry for key, if any.
func fits(quota, used int64, key, old string, exists bool, value string) bool {
	if quota <= 0 {
		return true
	}
	if exists {
		used -= usage(key, old)
	}
	return used+usage(key, value) <= quota
}
