package utils

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brightkids/activity-booking-backend/config"
)

var redisClient *redis.Client

// InitRedis connects the shared Redis client. Redis is optional: callers
// must tolerate a nil client (caching and webhook dedup degrade to
// database-only behaviour).
func InitRedis(cfg *config.Config) error {
	if cfg.RedisAddr == "" {
		log.Println("ℹ️ REDIS_ADDR not set, running without Redis")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return err
	}

	redisClient = client
	log.Println("✅ Connected to Redis")
	return nil
}

// Redis returns the shared client, or nil when Redis is not configured.
func Redis() *redis.Client {
	return redisClient
}
