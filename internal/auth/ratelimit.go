package auth

import (
	"strings"
	"sync"
	"time"
)

// RateLimitConfig contains configuration for the rate limiter. Zero fields
// take the defaults of DefaultRateLimitConfig.
type RateLimitConfig struct {
	MaxAttempts     int
	WindowDuration  time.Duration
	LockoutDuration time.Duration
	CleanupInterval time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	d := DefaultRateLimitConfig()
	if c.MaxAttempts > 0 {
		d.MaxAttempts = c.MaxAttempts
	}
	if c.WindowDuration > 0 {
		d.WindowDuration = c.WindowDuration
	}
	if c.LockoutDuration > 0 {
		d.LockoutDuration = c.LockoutDuration
	}
	if c.CleanupInterval > 0 {
		d.CleanupInterval = c.CleanupInterval
	}
	return d
}

// throttleKey identifies one client guessing one account. Usernames are
// case folded because login lookups ignore case too.
type throttleKey struct {
	ip       string
	username string
}

func newThrottleKey(ip, username string) throttleKey {
	return throttleKey{ip: ip, username: strings.ToLower(strings.TrimSpace(username))}
}

// failures counts failed logins inside the current window.
type failures struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

func (f *failures) locked(now time.Time) bool {
	return now.Before(f.lockedUntil)
}

// RateLimiter throttles password guessing per client address and username.
type RateLimiter struct {
	cfg  RateLimitConfig
	now  func() time.Time
	stop chan struct{}
	once sync.Once

	mu      sync.Mutex
	records map[throttleKey]*failures
}

// NewRateLimiter creates a limiter and starts its cleanup goroutine.
// Call Stop to release it.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		stop:    make(chan struct{}),
		records: make(map[throttleKey]*failures),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Allow reports whether a login attempt may proceed and, when it may not,
// how long the caller should wait.
func (rl *RateLimiter) Allow(ip, username string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rec, ok := rl.records[newThrottleKey(ip, username)]
	switch {
	case !ok:
		return true, 0
	case rec.locked(now):
		return false, rec.lockedUntil.Sub(now)
	case now.Sub(rec.windowStart) > rl.cfg.WindowDuration:
		return true, 0
	case rec.count < rl.cfg.MaxAttempts:
		return true, 0
	}
	return false, rl.cfg.LockoutDuration
}

// RecordFailure counts a failed attempt. It reports whether the attempt
// triggered a lockout and for how long.
func (rl *RateLimiter) RecordFailure(ip, username string) (bool, time.Duration) {
	key := newThrottleKey(ip, username)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rec, ok := rl.records[key]
	if !ok || now.Sub(rec.windowStart) > rl.cfg.WindowDuration {
		rec = &failures{windowStart: now}
		rl.records[key] = rec
	}

	rec.count++
	if rec.count < rl.cfg.MaxAttempts {
		return false, 0
	}
	rec.lockedUntil = now.Add(rl.cfg.LockoutDuration)
	return true, rl.cfg.LockoutDuration
}

// RecordSuccess forgets earlier failures after a successful login.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.records, newThrottleKey(ip, username))
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.prune(rl.now())
		case <-rl.stop:
			return
		}
	}
}

// prune drops records whose window and lockout have both passed.
func (rl *RateLimiter) prune(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, rec := range rl.records {
		if now.Sub(rec.windowStart) > rl.cfg.WindowDuration && !rec.locked(now) {
			delete(rl.records, key)
		}
	}
}
