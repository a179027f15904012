package config

import (
	"context"
	"crypto/tls"
	"net"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig groups the Redis connection with the response cache and the
// auth rate limiter built on it.
type RedisConfig struct {
	Options   *redis.Options
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// CacheConfig configures the response cache on public CMS and reference
// routes.  Methods lists the cacheable HTTP methods.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// RateLimitConfig configures the token bucket in front of signup and
// login.  KeyStrategy joins ip, user and route with underscores.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
}

// LoadRedis reads the REDIS_*, CACHE_* and RATE_LIMIT_* variables.
func LoadRedis() RedisConfig { return LoadRedisFrom(os.Getenv) }

// LoadRedisFrom is LoadRedis over an arbitrary variable source.  Every
// setting is optional.
func LoadRedisFrom(getenv func(string) string) RedisConfig {
	v := vars(getenv)

	addr := v.str("REDIS_ADDR", "localhost:6379")
	if host, port := getenv("REDIS_HOST"), getenv("REDIS_PORT"); host != "" && port != "" {
		addr = net.JoinHostPort(host, port)
	}
	opt := &redis.Options{
		Addr:     addr,
		Password: getenv("REDIS_PASSWORD"),
		DB:       v.num("REDIS_DB", 0),
	}
	if v.flag("REDIS_TLS", false) {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return RedisConfig{
		Options: opt,
		Cache: CacheConfig{
			Enabled:      v.flag("CACHE_ENABLED", true),
			Methods:      parseMethods(v.str("CACHE_METHODS", "GET")),
			TTL:          v.dur("CACHE_TTL", time.Minute),
			Prefix:       v.str("CACHE_PREFIX", "cache"),
			MaxBodyBytes: v.num("CACHE_MAX_BODY_BYTES", 1<<20),
		},
		RateLimit: RateLimitConfig{
			Enabled:        v.flag("RATE_LIMIT_ENABLED", true),
			Capacity:       v.num("RATE_LIMIT_CAPACITY", 10),
			RefillTokens:   v.num("RATE_LIMIT_REFILL_TOKENS", 1),
			RefillInterval: v.dur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
			TTL:            v.dur("RATE_LIMIT_TTL", 10*time.Minute),
			KeyStrategy:    v.str("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
			Prefix:         v.str("RATE_LIMIT_PREFIX", "rl"),
		}.normalize(),
	}
}

// normalize clamps the bucket to at least one token and keeps idle keys
// alive for five refill intervals.
func (c RateLimitConfig) normalize() RateLimitConfig {
	c.Capacity = max(c.Capacity, 1)
	c.RefillTokens = max(c.RefillTokens, 1)
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	c.TTL = max(c.TTL, 5*c.RefillInterval)
	return c
}

// Connect dials Redis and pings it.  It returns nil when the server does
// not answer; callers then run without caching and rate limiting.
func (c RedisConfig) Connect(ctx context.Context) *redis.Client {
	client := redis.NewClient(c.Options)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
