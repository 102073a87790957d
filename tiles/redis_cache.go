package tiles

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisTimeout = 2 * time.Second

// RedisCache shares fetched tiles between runs through Redis, PNG encoded.
// Hits are kept in a local ImageCache so a frame never waits on the network twice.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	local  *ImageCache
	log    zerolog.Logger
}

// NewRedisCache returns a cache storing keys under prefix with the given expiry (0 keeps them).
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, log zerolog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		local:  NewImageCache(),
		log:    log.With().Str("component", "tiles.redis").Logger(),
	}
}

func (c *RedisCache) Get(key string) (image.Image, bool) {
	if img, ok := c.local.Get(key); ok {
		return img, true
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return nil, false
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cached tile is not a png")
		return nil, false
	}
	c.local.Set(key, img)
	return img, true
}

func (c *RedisCache) Set(key string, img image.Image) {
	c.local.Set(key, img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("encoding tile")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := c.client.Set(ctx, c.prefix+key, buf.Bytes(), c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// Clear drops the local copies and every key under the prefix.
func (c *RedisCache) Clear() {
	c.local.Clear()

	ctx, cancel := context.WithTimeout(context.Background(), 10*redisTimeout)
	defer cancel()
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", iter.Val()).Msg("redis del failed")
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Msg("redis scan failed")
	}
}
