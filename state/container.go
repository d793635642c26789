package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dailypost/dailypost/storage"
)

// Observer is called after every dispatched action with the state before
// and after it.
type Observer func(prev, next State)

// Container owns a State and serializes every change to it.
type Container struct {
	mu        sync.Mutex
	state     State
	queue     []Action
	draining  bool
	observers map[int]Observer
	order     []int
	nextID    int
}

// Option configures a Container.
type Option func(*Container)

// WithState replaces Initial as the starting state.
func WithState(s State) Option {
	return func(c *Container) { c.state = s }
}

// WithStorage restores AdminAuthenticated from kv and keeps it persisted
// there on every change.
func WithStorage(ctx context.Context, kv storage.KV, log *zap.Logger) Option {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *Container) {
		v, ok, err := kv.Get(ctx, storage.AdminAuthKey)
		switch {
		case err != nil:
			log.Warn("failed to restore admin session", zap.Error(err))
		case ok:
			c.state.AdminAuthenticated = v == "true"
		}
		c.subscribe(PersistAdminAuth(ctx, kv, log))
	}
}

// NewContainer creates a container holding Initial().
func NewContainer(opts ...Option) *Container {
	c := &Container{
		state:     Initial(),
		observers: map[int]Observer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Container) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch reduces a into the state and notifies observers outside the lock.
// Actions dispatched while observers run (from an observer or another
// goroutine) are queued and applied in order by the dispatch already running.
func (c *Container) Dispatch(a Action) {
	c.mu.Lock()
	c.queue = append(c.queue, a)
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true

	// A panicking observer must not leave the container stuck draining.
	// Actions still queued are applied by the next Dispatch.
	locked := true
	defer func() {
		if !locked {
			c.mu.Lock()
		}
		c.draining = false
		c.mu.Unlock()
	}()

	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]

		prev := c.state
		c.state = Reduce(prev, next)
		cur := c.state
		observers := make([]Observer, 0, len(c.order))
		for _, id := range c.order {
			observers = append(observers, c.observers[id])
		}

		c.mu.Unlock()
		locked = false
		for _, fn := range observers {
			fn(prev, cur)
		}
		c.mu.Lock()
		locked = true
	}
}

// Subscribe registers fn and returns a func that removes it. Observers run in
// registration order.
func (c *Container) Subscribe(fn Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscribe(fn)
}

func (c *Container) subscribe(fn Observer) func() {
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	c.order = append(c.order, id)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.observers[id]; !ok {
			return
		}
		delete(c.observers, id)
		for i, v := range c.order {
			if v == id {
				c.order = append(c.order[:i:i], c.order[i+1:]...)
				break
			}
		}
	}
}

// PersistAdminAuth returns an observer writing "true" or "false" under
// storage.AdminAuthKey whenever AdminAuthenticated changes.
func PersistAdminAuth(ctx context.Context, kv storage.KV, log *zap.Logger) Observer {
	if log == nil {
		log = zap.NewNop()
	}
	return func(prev, next State) {
		if prev.AdminAuthenticated == next.AdminAuthenticated {
			return
		}
		v := "false"
		if next.AdminAuthenticated {
			v = "true"
		}
		if err := kv.Set(ctx, storage.AdminAuthKey, v); err != nil {
			log.Error("failed to persist admin session", zap.Error(err))
		}
	}
}
