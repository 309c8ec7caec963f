package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearCacheEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CACHE_ENABLED", "CACHE_METHODS", "CACHE_TTL",
		"CACHE_KEY_STRATEGY", "CACHE_PREFIX", "CACHE_MAX_BODY_BYTES",
	} {
		t.Setenv(k, "")
	}
}

func clearRateLimitEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_REFILL_TOKENS",
		"RATE_LIMIT_REFILL_INTERVAL", "RATE_LIMIT_TTL", "RATE_LIMIT_KEY_STRATEGY",
		"RATE_LIMIT_PREFIX", "RATE_LIMIT_DEBUG",
	} {
		t.Setenv(k, "")
	}
}

func TestCacheConfigDefaults(t *testing.T) {
	clearCacheEnv(t)

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "ticketing:cache", cfg.Prefix)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, "route_query", cfg.KeyStrategy)
	assert.Equal(t, map[string]bool{"GET": true}, cfg.Methods)
	assert.Equal(t, 1<<20, cfg.MaxBodyBytes)
}

func TestCacheConfigMethodsParsed(t *testing.T) {
	clearCacheEnv(t)
	t.Setenv("CACHE_METHODS", "get, head")

	cfg := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
}

func TestRateLimitConfigDefaults(t *testing.T) {
	clearRateLimitEnv(t)

	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "ticketing:rl", cfg.Prefix)
	assert.Equal(t, 60, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Minute, cfg.TTL)
	assert.Equal(t, "ip_user_route", cfg.KeyStrategy)
}

func TestRateLimitConfigTTLCoversRefill(t *testing.T) {
	clearRateLimitEnv(t)
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "90s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 5*time.Minute, cfg.TTL, "idle buckets must outlive several refill intervals")
}
