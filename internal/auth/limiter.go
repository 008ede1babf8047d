package auth

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultMaxLoginFailures = 5
	DefaultLoginWindow      = 15 * time.Minute
)

// LoginLimiter counts failed logins per key (the lowercased email). After
// max failures the key is locked until the window that started with the
// first failure expires.
type LoginLimiter struct {
	failures *cache.Cache
	max      int
	window   time.Duration
}

// NewLoginLimiter creates a LoginLimiter that blocks a key after max failures
// inside window. Zero values fall back to the defaults.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	if max <= 0 {
		max = DefaultMaxLoginFailures
	}
	if window <= 0 {
		window = DefaultLoginWindow
	}
	return &LoginLimiter{
		failures: cache.New(window, 2*window),
		max:      max,
		window:   window,
	}
}

// Allowed reports whether key may attempt another login.
func (l *LoginLimiter) Allowed(key string) bool {
	n, ok := l.failures.Get(normalizeKey(key))
	if !ok {
		return true
	}
	return n.(int) < l.max
}

// Fail records one failure and returns the running count.
func (l *LoginLimiter) Fail(key string) int {
	key = normalizeKey(key)
	if err := l.failures.Add(key, 1, l.window); err == nil {
		return 1
	}
	n, err := l.failures.IncrementInt(key, 1)
	if err != nil {
		// Expired between Add and IncrementInt.
		l.failures.Set(key, 1, l.window)
		return 1
	}
	return n
}

// Reset clears the key after a successful login.
func (l *LoginLimiter) Reset(key string) {
	l.failures.Delete(normalizeKey(key))
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
