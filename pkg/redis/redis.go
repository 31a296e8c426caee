package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dealradar/dealradar-backend/config"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

var client *redis.Client

// Init connects to Redis. Caching is optional: callers must tolerate a
// nil client when Redis is not configured.
func Init(cfg *config.Config) error {
	log := logger.Get()

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connection established", map[string]interface{}{
		"host": cfg.Redis.Host,
		"port": cfg.Redis.Port,
	})
	return nil
}

// GetClient returns the shared client, or nil when Redis is unavailable.
func GetClient() *redis.Client {
	return client
}

// Close shuts down the connection.
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// SetJSON marshals value and stores it under key with the given TTL.
func SetJSON(ctx context.Context, c *redis.Client, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl).Err()
}

// GetJSON loads key and unmarshals it into dest. Returns false on a cache
// miss.
func GetJSON(ctx context.Context, c *redis.Client, key string, dest interface{}) (bool, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes keys, ignoring missing ones.
func Delete(ctx context.Context, c *redis.Client, keys ...string) error {
	return c.Del(ctx, keys...).Err()
}
