package utils

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dailypost/dailypost/config"
)

var (
	redisClient *redis.Client
	redisMu     sync.Mutex
	redisInit   bool
)

// RedisEnabled reports whether the configuration needs a Redis connection.
func RedisEnabled(cfg config.AppConfig) bool {
	return cfg.CacheEnabled || cfg.StorageBackend == "redis"
}

// GetRedis returns a singleton Redis client based on loaded config, or nil
// when Redis is not enabled.
func GetRedis() *redis.Client {
	redisMu.Lock()
	defer redisMu.Unlock()
	if redisInit {
		return redisClient
	}
	redisInit = true

	cfg := config.Get()
	if !RedisEnabled(cfg) {
		return nil
	}
	redisClient = redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		Sugar.Warnf("redis ping failed addr=%s err=%v", redisClient.Options().Addr, err)
	}
	return redisClient
}

// SetRedis replaces the singleton client; nil disables Redis.
func SetRedis(c *redis.Client) {
	redisMu.Lock()
	redisClient = c
	redisInit = true
	redisMu.Unlock()
}
