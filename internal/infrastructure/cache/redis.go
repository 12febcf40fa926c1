package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jason-slatt/cameroon-voice-ai/internal/config"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// Key namespaces. Everything the engine keeps in Redis lives under one of
// these prefixes (after the deployment-wide key prefix from config).
const (
	KeyConversationPrefix = "conversation:"
	KeyOTPPrefix          = "otp:"
	KeyVelocityPrefix     = "fraud:velocity:"
	KeyBeneficiaryPrefix  = "fraud:beneficiaries:"
	KeyAlertPrefix        = "fraud:alerts:"
	KeyDailyTotalPrefix   = "limits:daily:"
)

// RedisCache wraps the Redis client with the typed operations the engine
// needs: JSON documents with TTL, hashes for OTP records, sorted sets for
// velocity windows, and sets for beneficiary history.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis creates a new Redis client and verifies the connection.
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	log = log.WithComponent("redis")
	log.Info().Str("addr", cfg.Addr()).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Msg("connected to Redis")

	return &RedisCache{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    log,
	}, nil
}

// Client returns the underlying Redis client.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	c.logger.Info().Msg("closing Redis connection")
	return c.client.Close()
}

// key prepends the namespace prefix to a key.
func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

// Get retrieves a raw value. Returns redis.Nil when the key is absent.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, c.key(key)).Result()
}

// GetJSON retrieves and unmarshals a JSON document.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// SetJSON marshals and stores a document, applying the TTL.
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.client.Set(ctx, c.key(key), string(data), ttl).Err()
}

// Delete removes keys.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	return c.client.Del(ctx, prefixed...).Err()
}

// Expire sets a TTL on a key.
func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, c.key(key), ttl).Err()
}

// HSetWithTTL writes hash fields and applies the TTL in one round trip.
func (c *RedisCache) HSetWithTTL(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	pipe := c.client.TxPipeline()
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	pipe.HSet(ctx, c.key(key), args...)
	pipe.Expire(ctx, c.key(key), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// HGetAll gets all fields from a hash. An absent key yields an empty map.
func (c *RedisCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.client.HGetAll(ctx, c.key(key)).Result()
}

// HIncrBy atomically increments a hash field.
func (c *RedisCache) HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error) {
	return c.client.HIncrBy(ctx, c.key(key), field, incr).Result()
}

// SAddWithTTL adds a member to a set and refreshes the set's TTL atomically.
func (c *RedisCache) SAddWithTTL(ctx context.Context, key string, member string, ttl time.Duration) error {
	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, c.key(key), member)
	pipe.Expire(ctx, c.key(key), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// SIsMember checks set membership.
func (c *RedisCache) SIsMember(ctx context.Context, key string, member string) (bool, error) {
	return c.client.SIsMember(ctx, c.key(key), member).Result()
}

// ZAddWithTTL records a scored member and refreshes the sorted set's TTL.
func (c *RedisCache) ZAddWithTTL(ctx context.Context, key string, member redis.Z, ttl time.Duration) error {
	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, c.key(key), member)
	pipe.Expire(ctx, c.key(key), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// ZCount counts members with scores inside [min, max].
func (c *RedisCache) ZCount(ctx context.Context, key, min, max string) (int64, error) {
	return c.client.ZCount(ctx, c.key(key), min, max).Result()
}

// RPushWithTTL appends to a list and refreshes its TTL. Used for the
// security-alert channel.
func (c *RedisCache) RPushWithTTL(ctx context.Context, key string, value string, ttl time.Duration) error {
	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, c.key(key), value)
	pipe.Expire(ctx, c.key(key), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// IncrByFloatWithTTL atomically adds to a float counter, setting the TTL only
// when the key is created by this call. Used for per-user daily totals.
func (c *RedisCache) IncrByFloatWithTTL(ctx context.Context, key string, value float64, ttl time.Duration) (float64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.IncrByFloat(ctx, c.key(key), value)
	pipe.ExpireNX(ctx, c.key(key), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// GetFloat reads a float counter; an absent key reads as zero.
func (c *RedisCache) GetFloat(ctx context.Context, key string) (float64, error) {
	val, err := c.Get(ctx, key)
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var f float64
	_, err = fmt.Sscanf(val, "%g", &f)
	return f, err
}
