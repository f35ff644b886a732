package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// LoginAttempt tracks login attempts from an IP
type LoginAttempt struct {
	Count    int
	FirstAt  time.Time
	LockedAt time.Time
	IsLocked bool
}

// RateLimiter manages rate limiting for login attempts
type RateLimiter struct {
	mu           sync.RWMutex
	attempts     map[string]*LoginAttempt
	maxAttempts  int
	windowPeriod time.Duration
	lockDuration time.Duration
}

// Global rate limiter instance
var loginRateLimiter *RateLimiter

// InitLoginRateLimiter initializes the global login rate limiter
func InitLoginRateLimiter() {
	loginRateLimiter = NewRateLimiter(5, 15*time.Minute, 30*time.Minute)
	go loginRateLimiter.startCleanup()
}

// NewRateLimiter creates a new rate limiter.
// maxAttempts login attempts are allowed within windowPeriod; once
// exceeded the IP is locked out for lockDuration.
func NewRateLimiter(maxAttempts int, windowPeriod, lockDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		attempts:     make(map[string]*LoginAttempt),
		maxAttempts:  maxAttempts,
		windowPeriod: windowPeriod,
		lockDuration: lockDuration,
	}
}

func (rl *RateLimiter) startCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	for range ticker.C {
		rl.cleanup()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, attempt := range rl.attempts {
		if attempt.IsLocked {
			if now.Sub(attempt.LockedAt) > rl.lockDuration {
				delete(rl.attempts, ip)
			}
		} else if now.Sub(attempt.FirstAt) > rl.windowPeriod {
			delete(rl.attempts, ip)
		}
	}
}

// Check reports whether an IP may attempt login, the attempts remaining,
// and how long a lockout has left
func (rl *RateLimiter) Check(ip string) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	attempt, exists := rl.attempts[ip]

	if !exists {
		return true, rl.maxAttempts, 0
	}

	if attempt.IsLocked {
		remaining := rl.lockDuration - now.Sub(attempt.LockedAt)
		if remaining > 0 {
			return false, 0, remaining
		}
		// Lock expired, reset
		delete(rl.attempts, ip)
		return true, rl.maxAttempts, 0
	}

	if now.Sub(attempt.FirstAt) > rl.windowPeriod {
		delete(rl.attempts, ip)
		return true, rl.maxAttempts, 0
	}

	attemptsRemaining := rl.maxAttempts - attempt.Count
	if attemptsRemaining <= 0 {
		return false, 0, rl.windowPeriod - now.Sub(attempt.FirstAt)
	}

	return true, attemptsRemaining, 0
}

// RecordAttempt records a login attempt for an IP
func (rl *RateLimiter) RecordAttempt(ip string, success bool) {
	if success {
		rl.mu.Lock()
		delete(rl.attempts, ip)
		rl.mu.Unlock()
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	attempt, exists := rl.attempts[ip]

	if !exists || now.Sub(attempt.FirstAt) > rl.windowPeriod {
		rl.attempts[ip] = &LoginAttempt{
			Count:   1,
			FirstAt: now,
		}
		return
	}

	attempt.Count++

	if attempt.Count >= rl.maxAttempts {
		attempt.IsLocked = true
		attempt.LockedAt = now
	}
}

// LoginRateLimitMiddleware rate limits login attempts per client IP
func LoginRateLimitMiddleware() gin.HandlerFunc {
	if loginRateLimiter == nil {
		InitLoginRateLimiter()
	}

	return func(c *gin.Context) {
		if c.Request.Method != "POST" {
			c.Next()
			return
		}

		ip := c.ClientIP()
		allowed, remaining, lockDuration := loginRateLimiter.Check(ip)

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limited",
				"message":     "Too many failed login attempts. Please try again later.",
				"retry_after": int(lockDuration.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RecordLoginAttempt records a login outcome from the auth controller
func RecordLoginAttempt(ip string, success bool) {
	if loginRateLimiter == nil {
		InitLoginRateLimiter()
	}
	loginRateLimiter.RecordAttempt(ip, success)
}
