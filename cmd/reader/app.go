package main

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/dailypost/dailypost/auth"
	"github.com/dailypost/dailypost/client"
	"github.com/dailypost/dailypost/models"
	"github.com/dailypost/dailypost/state"
	"github.com/dailypost/dailypost/storage"
	"github.com/dailypost/dailypost/store"
	"github.com/dailypost/dailypost/utils"
)

var errAdminRequired = errors.New("admin login required, run `reader login` first")

// app is what every command runs against.
type app struct {
	ctx   context.Context
	kv    storage.KV
	posts store.Posts
	state *state.Container
	gate  *auth.Gate
	api   *client.Client
	out   io.Writer
	log   *zap.Logger
}

func newApp(ctx context.Context, g Globals, out io.Writer) (*app, error) {
	log := zap.NewNop()
	if g.LogFile != "" {
		l, err := utils.NewRollingFileLogger(g.LogFile, g.LogLevel, 10, 3, 7, false)
		if err != nil {
			return nil, err
		}
		log = l
	}
	kv, err := storage.NewFile(g.Data, g.Quota)
	if err != nil {
		return nil, err
	}
	return assemble(ctx, kv, g.API, out, log), nil
}

// assemble wires the store, state container and admin gate over kv. A
// non-empty apiURL selects the REST API instead of kv for posts.
func assemble(ctx context.Context, kv storage.KV, apiURL string, out io.Writer, log *zap.Logger) *app {
	initial, err := restoreSession(ctx, kv)
	if err != nil {
		log.Warn("failed to restore reader session", zap.Error(err))
	}
	c := state.NewContainer(
		state.WithState(initial),
		state.WithStorage(ctx, kv, log.Named("state")),
	)
	c.Subscribe(persistSession(ctx, kv, log))

	a := &app{ctx: ctx, kv: kv, state: c, out: out, log: log}
	if apiURL != "" {
		token, _, _ := kv.Get(ctx, tokenKey)
		a.api = client.New(apiURL, client.WithToken(token))
		a.posts = store.NewRemote(a.api, log.Named("remote"))
		a.gate = auth.NewGate(auth.Remote{API: a.api}, c, log.Named("auth"))
	} else {
		a.posts = store.NewLocal(kv, store.WithLogger(log.Named("store")))
		a.gate = auth.NewGate(auth.NewFixedCredential("", ""), c, log.Named("auth"))
	}
	return a
}

func (a *app) close() {
	_ = a.log.Sync()
}

// load reads the collection. A load failure is recorded in the state and the
// fallback collection is still returned.
func (a *app) load() []models.Post {
	a.state.Dispatch(state.SetLoading{Loading: true})
	posts, err := a.posts.Load(a.ctx)
	a.state.Dispatch(state.SetLoading{Loading: false})
	if err != nil {
		a.fail(err)
	}
	return posts
}

// fail records err as the visible error and returns it.
func (a *app) fail(err error) error {
	a.state.Dispatch(state.SetError{Err: err.Error()})
	return err
}

func (a *app) requireAdmin() error {
	if !a.state.State().AdminAuthenticated {
		return a.fail(errAdminRequired)
	}
	return nil
}
