package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultLockout     = 15 * time.Minute
)

// attemptScript counts one attempt and reports the new count with the key's
// remaining lifetime in milliseconds. The window starts with the first
// attempt.
var attemptScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// LoginThrottle counts login attempts per email in Redis.
// Key format: login:attempts:<email>
// Every attempt increments the counter before it is checked, so concurrent
// attempts can never get past maxAttempts. A successful login clears it.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int64
	lockout     time.Duration
}

// NewLoginThrottle wraps client. Non-positive limits fall back to 5 attempts
// per 15 minutes.
func NewLoginThrottle(client *redis.Client, maxAttempts int, lockout time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = defaultLockout
	}
	return &LoginThrottle{client: client, maxAttempts: int64(maxAttempts), lockout: lockout}
}

// Attempt records one login attempt for email and returns how long the
// caller must wait, or zero when the attempt may proceed.
func (t *LoginThrottle) Attempt(ctx context.Context, email string) (time.Duration, error) {
	res, err := attemptScript.Run(ctx, t.client, []string{t.key(email)}, t.lockout.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, fmt.Errorf("throttle attempt: %w", err)
	}
	if len(res) != 2 {
		return 0, fmt.Errorf("throttle attempt: unexpected reply %v", res)
	}
	return t.verdict(res[0], res[1]), nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, t.key(email)).Err()
}

func (t *LoginThrottle) key(email string) string {
	return "login:attempts:" + strings.ToLower(email)
}

// verdict maps the counter after an increment to a wait.
func (t *LoginThrottle) verdict(count, pttlMillis int64) time.Duration {
	if count <= t.maxAttempts {
		return 0
	}
	return retryAfter(pttlMillis, t.lockout)
}

// retryAfter turns a PTTL reply into a wait. A reply of -2 means the key is
// already gone; a key without expiry (-1) waits a full window.
func retryAfter(pttlMillis int64, lockout time.Duration) time.Duration {
	switch {
	case pttlMillis > 0:
		return time.Duration(pttlMillis) * time.Millisecond
	case pttlMillis == -2:
		return 0
	default:
		return lockout
	}
}
