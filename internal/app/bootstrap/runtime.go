package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/omnidesk/omnidesk-core/internal/config"
	"github.com/omnidesk/omnidesk-core/internal/conversation"
	"github.com/omnidesk/omnidesk-core/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildPgxPool connects to Postgres, verifying the connection.
func BuildPgxPool(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// BuildTranscriptStore wires the Redis-backed transcript cache when Redis is
// available; a nil store is valid and simply skips the fast path.
func BuildTranscriptStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) *conversation.TranscriptStore {
	if redisClient == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	maxMessages := int64(250)
	if cfg != nil && cfg.TranscriptMaxMsgs > 0 {
		maxMessages = int64(cfg.TranscriptMaxMsgs)
	}
	logger.Info("transcript cache enabled", "max_messages", maxMessages)
	return conversation.NewTranscriptStore(redisClient, maxMessages)
}
