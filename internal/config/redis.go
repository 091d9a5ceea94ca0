package config

// This file defines the Redis client constructor.  Redis backs the session
// store, login rate limiting and the property list cache.  If the server
// cannot be reached during startup the constructor returns nil and callers
// degrade gracefully (memory sessions, no rate limiting, no caching).

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
)

// RedisConfig is decoded from REDIS_* variables.  REDIS_HOST and REDIS_PORT
// take precedence over REDIS_ADDR when both are set.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT"`
	Addr     string `env:"REDIS_ADDR,default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,default=0"`
	TLS      string `env:"REDIS_TLS"`
}

func (rc RedisConfig) address() string {
	if rc.Host != "" && rc.Port != "" {
		return rc.Host + ":" + rc.Port
	}
	if rc.Addr == "" {
		return "localhost:6379"
	}
	return rc.Addr
}

// NewRedisClient instantiates a Redis client from the environment and pings
// it with a short timeout.  The returned client is nil when the variables
// cannot be decoded or the server does not answer.
func NewRedisClient() *redis.Client {
	var rc RedisConfig
	if err := envdecode.Decode(&rc); err != nil {
		return nil
	}
	var tlsConf *tls.Config
	if strings.EqualFold(rc.TLS, "true") || rc.TLS == "1" {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      rc.address(),
		Password:  rc.Password,
		DB:        rc.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
