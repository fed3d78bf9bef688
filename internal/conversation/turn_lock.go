package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TurnLocker admits one turn per session at a time. Acquire returns
// ErrTurnInProgress when another turn holds the session.
type TurnLocker interface {
	Acquire(ctx context.Context, sessionID string) (release func(), err error)
}

// MemoryTurnLocker serialises turns within this process only.
type MemoryTurnLocker struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewMemoryTurnLocker() *MemoryTurnLocker {
	return &MemoryTurnLocker{active: make(map[string]struct{})}
}

func (l *MemoryTurnLocker) Acquire(_ context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.active[sessionID]; busy {
		return nil, ErrTurnInProgress
	}
	l.active[sessionID] = struct{}{}
	return func() {
		l.mu.Lock()
		delete(l.active, sessionID)
		l.mu.Unlock()
	}, nil
}

const defaultTurnLockTTL = 2 * time.Minute

// releaseTurnScript deletes the lock only if this holder still owns it.
var releaseTurnScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisTurnLocker serialises turns across every instance sharing the Redis
// session store. The TTL bounds how long a crashed holder blocks a session.
type RedisTurnLocker struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedisTurnLocker(client *redis.Client, ttl time.Duration) *RedisTurnLocker {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultTurnLockTTL
	}
	return &RedisTurnLocker{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("inmobiliaria.internal.conversation.turns"),
	}
}

func (l *RedisTurnLocker) Acquire(ctx context.Context, sessionID string) (func(), error) {
	ctx, span := l.tracer.Start(ctx, "conversation.acquire_turn")
	defer span.End()
	span.SetAttributes(attribute.String("inmobiliaria.session_id", sessionID))

	key := turnLockKey(sessionID)
	token := uuid.NewString()
	ok, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: acquire turn lock: %w", err)
	}
	if !ok {
		return nil, ErrTurnInProgress
	}

	return func() {
		// The request context may already be cancelled by the time we unlock.
		_ = releaseTurnScript.Run(context.WithoutCancel(ctx), l.redis, []string{key}, token).Err()
	}, nil
}

func turnLockKey(sessionID string) string {
	return "chat_turn:" + sessionID
}
