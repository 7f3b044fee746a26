package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimited      = errors.New("rate limited")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// ipBudgetFactor sizes the IP-wide budget when none is configured.
const ipBudgetFactor = 20

// Config holds failed-login throttling parameters. MaxLoginAttempts bounds
// failures for one email from one client IP. MaxIPAttempts bounds failures
// across all emails from one IP and only applies with EnableIPThrottle.
type Config struct {
	MaxLoginAttempts      int
	MaxIPAttempts         int
	LoginCooldownDuration time.Duration
	EnableIPThrottle      bool
	KeyPrefix             string
}

// Limiter counts failed logins per (email, client IP) pair and, optionally,
// per client IP in fixed windows. Failures from one address never lock the
// same email out from another address.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter. A nil client or non-positive attempt budget disables it.
func New(client redis.UniversalClient, cfg Config) *Limiter {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "auth"
	}
	if cfg.MaxIPAttempts <= 0 {
		cfg.MaxIPAttempts = cfg.MaxLoginAttempts * ipBudgetFactor
	}
	return &Limiter{redis: client, config: cfg}
}

// Enabled reports whether the limiter enforces anything.
func (l *Limiter) Enabled() bool {
	return l != nil && l.redis != nil && l.config.MaxLoginAttempts > 0
}

// CheckLogin returns ErrRateLimited once the (email, ip) pair or, with IP
// throttling on, the IP has exhausted its budget.
func (l *Limiter) CheckLogin(ctx context.Context, email, ip string) error {
	if !l.Enabled() {
		return nil
	}
	if err := l.checkCounter(ctx, l.accountKey(email, ip), l.config.MaxLoginAttempts); err != nil {
		return err
	}
	if l.ipThrottled(ip) {
		return l.checkCounter(ctx, l.ipKey(ip), l.config.MaxIPAttempts)
	}
	return nil
}

// IncrementLogin records a failed login attempt.
func (l *Limiter) IncrementLogin(ctx context.Context, email, ip string) error {
	if !l.Enabled() {
		return nil
	}
	if err := l.increment(ctx, l.accountKey(email, ip)); err != nil {
		return err
	}
	if l.ipThrottled(ip) {
		return l.increment(ctx, l.ipKey(ip))
	}
	return nil
}

// ResetLogin clears the (email, ip) counter after a successful login. The IP
// counter is left alone so one good account cannot launder a sprayed IP.
func (l *Limiter) ResetLogin(ctx context.Context, email, ip string) error {
	if !l.Enabled() {
		return nil
	}
	if err := l.redis.Del(ctx, l.accountKey(email, ip)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the failed-attempt counter for email from ip.
func (l *Limiter) Attempts(ctx context.Context, email, ip string) (int, error) {
	if !l.Enabled() {
		return 0, nil
	}
	count, err := l.redis.Get(ctx, l.accountKey(email, ip)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return count, nil
}

func (l *Limiter) ipThrottled(ip string) bool {
	return l.config.EnableIPThrottle && ip != ""
}

func (l *Limiter) checkCounter(ctx context.Context, key string, limit int) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(limit) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) increment(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	// fixed window: TTL is set on the first hit only
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.LoginCooldownDuration).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return nil
}

func (l *Limiter) accountKey(email, ip string) string {
	return l.config.KeyPrefix + ":login:account:" + ip + ":" + email
}

func (l *Limiter) ipKey(ip string) string {
	return l.config.KeyPrefix + ":login:ip:" + ip
}
