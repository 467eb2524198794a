package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

const staleClientAfter = 3 * time.Minute

type limitedClient struct {
	lim  *rate.Limiter
	seen time.Time
}

// LoginLimiter throttles login attempts per client IP with a token bucket.
type LoginLimiter struct {
	mu      sync.Mutex
	clients map[string]*limitedClient
	r       rate.Limit
	burst   int
}

// NewLoginLimiter builds a limiter. Stale clients are purged until ctx is done.
func NewLoginLimiter(ctx context.Context, rps float64, burst int) *LoginLimiter {
	if burst <= 0 {
		burst = 1
	}
	l := &LoginLimiter{
		clients: make(map[string]*limitedClient),
		r:       rate.Limit(rps),
		burst:   burst,
	}
	go l.janitor(ctx)
	return l
}

func (l *LoginLimiter) janitor(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			for ip, c := range l.clients {
				if time.Since(c.seen) > staleClientAfter {
					delete(l.clients, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Allow reports whether the client may attempt another login now.
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.clients[ip]; ok {
		c.seen = time.Now()
		return c.lim.Allow()
	}
	lim := rate.NewLimiter(l.r, l.burst)
	l.clients[ip] = &limitedClient{lim: lim, seen: time.Now()}
	return lim.Allow()
}

// Handle rejects requests over the limit with 429.
func (l *LoginLimiter) Handle(c *fiber.Ctx) error {
	if !l.Allow(c.IP()) {
		return apperrors.NewTooManyRequests("Demasiados intentos de inicio de sesión, intente más tarde")
	}
	return c.Next()
}

// AttemptTracker counts failed logins per username.
type AttemptTracker interface {
	Blocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// NoopAttemptTracker never blocks.
type NoopAttemptTracker struct{}

func (NoopAttemptTracker) Blocked(context.Context, string) (bool, error) { return false, nil }
func (NoopAttemptTracker) RecordFailure(context.Context, string) error   { return nil }
func (NoopAttemptTracker) Reset(context.Context, string) error           { return nil }

type redisAttemptTracker struct {
	client redis.Cmdable
	max    int
	window time.Duration
}

// NewRedisAttemptTracker locks a username out for window after max failures.
func NewRedisAttemptTracker(client redis.Cmdable, max int, window time.Duration) AttemptTracker {
	return &redisAttemptTracker{client: client, max: max, window: window}
}

func failureKey(username string) string {
	return "login:failures:" + username
}

func (t *redisAttemptTracker) Blocked(ctx context.Context, username string) (bool, error) {
	val, err := t.client.Get(ctx, failureKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return false, err
	}
	return count >= t.max, nil
}

func (t *redisAttemptTracker) RecordFailure(ctx context.Context, username string) error {
	key := failureKey(username)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return t.client.Expire(ctx, key, t.window).Err()
	}
	return nil
}

func (t *redisAttemptTracker) Reset(ctx context.Context, username string) error {
	return t.client.Del(ctx, failureKey(username)).Err()
}
