package main

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/dailypost/dailypost/state"
	"github.com/dailypost/dailypost/storage"
)

// Keys the reader keeps next to the posts.
const (
	sessionKey = "dailyPostReaderSession"
	tokenKey   = "dailyPostAdminToken"
)

// session is the part of the state that survives between invocations.
// The admin flag is handled by state.WithStorage.
type session struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Page     int    `json:"page"`
}

func restoreSession(ctx context.Context, kv storage.KV) (state.State, error) {
	s := state.Initial()
	raw, ok, err := kv.Get(ctx, sessionKey)
	if err != nil || !ok {
		return s, err
	}
	var sess session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return s, err
	}
	s = state.Reduce(s, state.SetActiveCategory{Category: sess.Category})
	s = state.Reduce(s, state.SetSearchQuery{Query: sess.Search})
	s = state.Reduce(s, state.SetCurrentPage{Page: sess.Page})
	return s, nil
}

func persistSession(ctx context.Context, kv storage.KV, log *zap.Logger) state.Observer {
	return func(prev, next state.State) {
		if prev.SearchQuery == next.SearchQuery &&
			prev.ActiveCategory == next.ActiveCategory &&
			prev.CurrentPage == next.CurrentPage {
			return
		}
		b, err := json.Marshal(session{
			Search:   next.SearchQuery,
			Category: next.ActiveCategory,
			Page:     next.CurrentPage,
		})
		if err != nil {
			return
		}
		if err := kv.Set(ctx, sessionKey, string(b)); err != nil {
			log.Warn("failed to persist reader session", zap.Error(err))
		}
	}
}
