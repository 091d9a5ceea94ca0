package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// CacheConfig defines settings for the upstream response cache used for
// public lookups such as the property list shown during resident signup.
// When Enabled is false or no Redis client is configured, caching is
// disabled and every lookup goes upstream.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED,default=true"`
	TTL          time.Duration `env:"CACHE_TTL,default=30s"`
	Prefix       string        `env:"CACHE_PREFIX,default=cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES,default=1048576"`
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
func LoadCacheConfig() (CacheConfig, error) {
	var cfg CacheConfig
	if err := envdecode.Decode(&cfg); err != nil {
		return CacheConfig{}, fmt.Errorf("decode cache config: %w", err)
	}
	cfg.Prefix = strings.TrimSpace(cfg.Prefix)
	if cfg.Prefix == "" {
		cfg.Prefix = "cache"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Second
	}
	return cfg, nil
}
