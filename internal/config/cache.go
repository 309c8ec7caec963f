package config

import (
	"strings"
	"time"
)

// CacheConfig controls the Redis-backed response cache that fronts the
// public catalog routes.  Seat availability is served uncached, so TTL
// only bounds how stale movie and show listings may appear.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig builds a CacheConfig from environment variables.  The
// defaults suit the catalog: GET only, 30-second entries, keys scoped
// under "ticketing:cache".
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      optBool("CACHE_ENABLED", true),
		Methods:      parseMethods(optString("CACHE_METHODS", "GET")),
		TTL:          optDuration("CACHE_TTL", 30*time.Second),
		KeyStrategy:  optString("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       optString("CACHE_PREFIX", "ticketing:cache"),
		MaxBodyBytes: optInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

func parseMethods(s string) map[string]bool {
	m := make(map[string]bool)
	for _, p := range strings.Split(s, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
