package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// RateLimitConfig tunes the token bucket guarding the login, register and
// Google sign-in forms.
type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED,default=true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY,default=10"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS,default=1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=6s"`
	TTL            time.Duration `env:"RATE_LIMIT_TTL,default=10m"`
	KeyStrategy    string        `env:"RATE_LIMIT_KEY_STRATEGY,default=ip_route"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX,default=rl"`
	Debug          bool          `env:"RATE_LIMIT_DEBUG,default=false"`
}

func LoadRateLimitConfig() (RateLimitConfig, error) {
	var def RateLimitConfig
	if err := envdecode.Decode(&def); err != nil {
		return RateLimitConfig{}, fmt.Errorf("decode rate limit config: %w", err)
	}
	return def.normalize(), nil
}

func (def RateLimitConfig) normalize() RateLimitConfig {
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}
