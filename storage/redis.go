package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisHash holds the namespace entries.
	DefaultRedisHash = "dailypost:storage"
	// DefaultRedisChannel carries changed keys to every subscriber.
	DefaultRedisChannel = "dailypost:changes"

	maxTxRetries = 5
)

// Redis stores the namespace in a single hash and publishes each changed key
// so other instances can reload.
type Redis struct {
	client  *redis.Client
	hash    string
	channel string
	quota   int64
}

var (
	_ KV       = (*Redis)(nil)
	_ Notifier = (*Redis)(nil)
)

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, quota int64) *Redis {
	return &Redis{
		client:  client,
		hash:    DefaultRedisHash,
		channel: DefaultRedisChannel,
		quota:   quota,
	}
}

// Get implements KV.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.HGet(ctx, r.hash, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", key, err)
	}
	return v, true, nil
}

// Set implements KV. The quota check and the write run in one WATCH
// transaction so concurrent writers cannot jointly overshoot the quota.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	txf := func(tx *redis.Tx) error {
		all, err := tx.HGetAll(ctx, r.hash).Result()
		if err != nil {
			return err
		}
		var used int64
		for k, v := range all {
			used += usage(k, v)
		}
		old, exists := all[key]
		if !fits(r.quota, used, key, old, exists, value) {
			return ErrQuotaExceeded
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, r.hash, key, value)
			p.Publish(ctx, r.channel, key)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, r.hash)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrQuotaExceeded) {
			return fmt.Errorf("redis hset %s: %w", key, err)
		}
		return err
	}
	return fmt.Errorf("redis hset %s: %w", key, redis.TxFailedErr)
}

// Remove implements KV.
func (r *Redis) Remove(ctx context.Context, key string) error {
	n, err := r.client.HDel(ctx, r.hash, key).Result()
	if err != nil {
		return fmt.Errorf("redis hdel %s: %w", key, err)
	}
	if n > 0 {
		if err := r.client.Publish(ctx, r.channel, key).Err(); err != nil {
			return fmt.Errorf("redis publish %s: %w", key, err)
		}
	}
	return nil
}

// Subscribe implements Notifier.
func (r *Redis) Subscribe(ctx context.Context) (<-chan string, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	// Wait for the subscription to be confirmed so no publish after return is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", r.channel, err)
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				default:
				}
			}
		}
	}()
	return out, nil
}
