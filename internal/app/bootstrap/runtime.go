package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/inmobiliaria-premium/internal/config"
	"github.com/wolfman30/inmobiliaria-premium/internal/conversation"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
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
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore keeps chat sessions in Redis when a client is available,
// otherwise in process memory.
func BuildSessionStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) conversation.SessionStore {
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient == nil {
		logger.Warn("redis not configured; chat sessions are kept in memory")
		return conversation.NewMemorySessionStore(cfg.ChatSessionTTL)
	}
	logger.Info("chat sessions stored in redis", "ttl", cfg.ChatSessionTTL.String())
	return conversation.NewRedisSessionStore(redisClient, cfg.ChatSessionTTL, nil)
}

// BuildTurnLocker shares the per-session turn lock through Redis so turns
// stay sequential across API instances. Without Redis the chat service keeps
// its in-process lock.
func BuildTurnLocker(redisClient *redis.Client) conversation.TurnLocker {
	if redisClient == nil {
		return nil
	}
	return conversation.NewRedisTurnLocker(redisClient, 0)
}
