package config

import "time"

// RateLimitConfig controls the Redis token-bucket limiter.  Capacity is
// the burst size; RefillTokens are added every RefillInterval.  TTL
// bounds how long an idle bucket survives in Redis.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig builds a RateLimitConfig from environment
// variables.  Defaults allow a burst of 60 requests refilling one per
// second, keyed per client IP, user and route under "ticketing:rl".
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        optBool("RATE_LIMIT_ENABLED", true),
		Capacity:       optInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   optInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: optDuration("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            optDuration("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    optString("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         optString("RATE_LIMIT_PREFIX", "ticketing:rl"),
		Debug:          optBool("RATE_LIMIT_DEBUG", false),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	// An idle bucket must outlive several refill intervals, otherwise
	// the key expires and every client starts from a full bucket.
	if min := 5 * cfg.RefillInterval; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}
