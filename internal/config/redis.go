package config

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"parkhub/internal/pkg/cache"
)

// ConnectCache builds the read-side cache store. When no Redis URL is
// configured, or the server is unreachable, the application falls back
// to a no-op store so every read path recomputes from the database.
func ConnectCache(config *Config) cache.Store {
	if config.Redis.URL == "" {
		log.Println("⚠️ REDIS_URL not set, caching disabled")
		return cache.NewNoopStore()
	}

	opts, err := redis.ParseURL(config.Redis.URL)
	if err != nil {
		log.Printf("⚠️ Invalid REDIS_URL (%v), caching disabled", err)
		return cache.NewNoopStore()
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable (%v), caching disabled", err)
		return cache.NewNoopStore()
	}

	log.Println("✅ Redis connected successfully")
	return cache.NewRedisStore(client)
}
