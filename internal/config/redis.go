package config

import (
	"context"
	"crypto/tls"
	"log"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis backing the login rate limiter.
// REDIS_URL takes precedence (redis:// or rediss:// form); otherwise the
// address is assembled from REDIS_HOST/REDIS_PORT with REDIS_PASSWORD,
// REDIS_DB and REDIS_TLS applied on top.  Redis is optional: on any
// connection failure the constructor returns nil and the limiter degrades
// to a pass-through.
func NewRedisClient() *redis.Client {
	opts, err := redisOptions()
	if err != nil {
		log.Printf("redis config: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil
	}
	return client
}

func redisOptions() (*redis.Options, error) {
	if url := envStr("REDIS_URL", ""); url != "" {
		return redis.ParseURL(url)
	}

	opts := &redis.Options{
		Addr:     net.JoinHostPort(envStr("REDIS_HOST", "localhost"), envStr("REDIS_PORT", "6379")),
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
	}
	if envBool("REDIS_TLS", false) {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}
