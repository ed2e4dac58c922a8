package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when addr is empty or the server does not answer,
// in which case callers fall back to in-process state.
func ConnectRedis(addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis ping failed (%s), using in-memory idempotency: %v", addr, err)
		_ = rdb.Close()
		return nil
	}
	log.Println("🔧 Redis connected at", addr)
	return rdb
}
